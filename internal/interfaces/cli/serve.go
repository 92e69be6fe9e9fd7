package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/phimark/internal/config"
	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/phimark/internal/interfaces/http"
)

// NewServeCmd runs the HTTP API until SIGINT or SIGTERM.  With --config the
// file is watched and log level changes apply without a restart.
func NewServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the markup operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := *cliCtx.Config
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			logger := cliCtx.Logger

			srv, err := httpserver.NewAPIServer(&cfg, logger, Version)
			if err != nil {
				return err
			}

			if cliCtx.ConfigPath != "" && !cmd.Flags().Changed("log-level") && !cliCtx.Verbose {
				err := config.Watch(cliCtx.ConfigPath, func(next *config.Config) {
					cliCtx.LogLevel.Set(next.Log.Level)
					logger.Info("configuration reloaded", logging.String("log_level", cliCtx.LogLevel.String()))
				}, func(err error) {
					logger.Warn("ignoring invalid configuration", logging.Err(err))
				})
				if err != nil {
					logger.Warn("configuration watch disabled", logging.Err(err))
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting phimark API server",
				logging.String("version", Version),
				logging.String("addr", srv.Addr()),
			)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}
