// Package cmd defines and implements the CLI commands for the aigate executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aigate",
		Short: "An edge gateway that serves AI crawlers synthetic content.",
		Long: `aigate sits in front of a web property and classifies every inbound
request by its User-Agent. Known AI content crawlers receive a fixed
AI-ready document; all other traffic is proxied transparently to the
configured origin. Every request is reported to an external log
collector without ever delaying the response.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/aigate, $HOME/.aigate)")

	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point for the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
