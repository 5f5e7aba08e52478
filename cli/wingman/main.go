package main

import (
	"fmt"
	"os"

	wingmancmder "github.com/papercomputeco/wingman/cmd/wingman"
	"github.com/papercomputeco/wingman/pkg/cliui"
)

func main() {
	cmd := wingmancmder.NewWingmanCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
		os.Exit(1)
	}
}
