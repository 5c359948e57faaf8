package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/aigate/internal/app"
	"github.com/JakeFAU/aigate/internal/config"
	"github.com/JakeFAU/aigate/internal/logging"
)

// newServeCmd creates and configures the 'serve' subcommand.
// It loads configuration, builds the application container, and runs the
// gateway until the process receives an interrupt.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the gateway",
		Long: `Starts the HTTP edge gateway. Requests from known AI crawlers are
answered with the synthetic document; everything else is forwarded to
the origin configured via origin.url (or the ORIGIN_URL environment
variable).`,

		RunE: runServeCommand,
	}
	return cmd
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	application, err := app.NewApp(cfg, logger)
	if err != nil {
		logger.Error("application init failed", zap.Error(err))
		return fmt.Errorf("init application: %w", err)
	}

	if err := application.Run(cmd.Context()); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}
