// Package cmdtest runs wingman commands against a real API server in tests.
package cmdtest

import (
	"bytes"
	"net"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/wingman/api"
	"github.com/papercomputeco/wingman/pkg/llm"
	"github.com/papercomputeco/wingman/pkg/logger"
	"github.com/papercomputeco/wingman/pkg/storage/inmemory"
)

// Server starts an API server with in-memory storage on a loopback port and
// returns its base URL. It is shut down when the current spec ends.
func Server(gen llm.Generator) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).NotTo(HaveOccurred())

	server, err := api.NewServer(api.Config{}, inmemory.NewDriver(), gen, logger.Nop())
	Expect(err).NotTo(HaveOccurred())

	go func() {
		defer GinkgoRecover()
		_ = server.RunWithListener(ln)
	}()
	DeferCleanup(func() { _ = server.Shutdown() })

	return "http://" + ln.Addr().String()
}

// Env is a scratch .wingman directory bound to one API server.
type Env struct {
	ConfigDir string
	APITarget string
}

// NewEnv creates a temporary config directory for target.
func NewEnv(target string) *Env {
	return &Env{ConfigDir: GinkgoT().TempDir(), APITarget: target}
}

// Run executes sub below a root command carrying the global flags. stdin is
// served from a regular file so password prompts read it like a pipe.
func (e *Env) Run(stdin string, sub *cobra.Command, args ...string) (string, error) {
	root := &cobra.Command{Use: "wingman", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	root.PersistentFlags().String("config-dir", "", "Override path to .wingman/ config directory")
	root.PersistentFlags().String("trace-stream", "", "Append the raw bytes of streamed answers to this file")
	root.AddCommand(sub)

	in := filepath.Join(GinkgoT().TempDir(), "stdin")
	Expect(os.WriteFile(in, []byte(stdin), 0o600)).To(Succeed())
	f, err := os.Open(in)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	var out bytes.Buffer
	root.SetIn(f)
	root.SetOut(&out)
	root.SetErr(GinkgoWriter)

	full := append([]string{sub.Name()}, args...)
	full = append(full, "--config-dir", e.ConfigDir)
	if hasFlag(sub, "api-target") {
		full = append(full, "--api-target", e.APITarget)
	}
	root.SetArgs(full)

	err = root.Execute()
	return out.String(), err
}

func hasFlag(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Lookup(name) != nil {
		return true
	}
	for _, c := range cmd.Commands() {
		if hasFlag(c, name) {
			return true
		}
	}
	return false
}
