// Package wingmancmder builds the root wingman command.
package wingmancmder

import (
	"github.com/spf13/cobra"

	versioncmder "github.com/papercomputeco/wingman/cmd/version"
	accountcmder "github.com/papercomputeco/wingman/cmd/wingman/account"
	askcmder "github.com/papercomputeco/wingman/cmd/wingman/ask"
	biocmder "github.com/papercomputeco/wingman/cmd/wingman/bio"
	chatcmder "github.com/papercomputeco/wingman/cmd/wingman/chat"
	configcmder "github.com/papercomputeco/wingman/cmd/wingman/config"
	historycmder "github.com/papercomputeco/wingman/cmd/wingman/history"
	initcmder "github.com/papercomputeco/wingman/cmd/wingman/init"
	lovecmder "github.com/papercomputeco/wingman/cmd/wingman/love"
	replycmder "github.com/papercomputeco/wingman/cmd/wingman/reply"
	seedcmder "github.com/papercomputeco/wingman/cmd/wingman/seed"
	servecmder "github.com/papercomputeco/wingman/cmd/wingman/serve"
)

const wingmanLongDesc string = `Wingman is an AI dating assistant.

Run the API server and talk to it:
  wingman serve                Run the API server
  wingman register             Create an account
  wingman chat                 Chat with your wingman
  wingman reply "hey there"    Get five reply options for a match's message`

const wingmanShortDesc string = "Wingman - AI dating assistant"

func NewWingmanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wingman",
		Short:         wingmanShortDesc,
		Long:          wingmanLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .wingman/ config directory")
	cmd.PersistentFlags().String("trace-stream", "", "Append the raw bytes of streamed answers to this file")

	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())

	cmd.AddCommand(accountcmder.NewRegisterCmd())
	cmd.AddCommand(accountcmder.NewLoginCmd())
	cmd.AddCommand(accountcmder.NewLogoutCmd())
	cmd.AddCommand(accountcmder.NewWhoamiCmd())
	cmd.AddCommand(accountcmder.NewSettingsCmd())

	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(biocmder.NewBioCmd())
	cmd.AddCommand(replycmder.NewReplyCmd())
	cmd.AddCommand(lovecmder.NewLoveCmd())

	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
