package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/florinato/mongoagent/internal/server"
)

var (
	servePortFlag int
	serveHostFlag string
)

func init() {
	serveCmd.Flags().IntVar(&servePortFlag, "port", 0, "Server port (default from config or 8000)")
	serveCmd.Flags().StringVar(&serveHostFlag, "host", "", "Listen address (default from config or 127.0.0.1)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversations over HTTP",
	Long: `Serve the multi-session HTTP API and WebSocket bridge.

Endpoints:
  POST /sessions                 create a session
  POST /sessions/{id}/chat       send user_query, or approve/confirmed_command
  GET  /sessions/{id}/history    conversation turns
  DELETE /sessions/{id}          forget a session
  GET  /log                      debug trace
  GET  /ws                       WebSocket bridge`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, appConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		port := servePortFlag
		if port == 0 {
			port = appConfig.Server.Port
		}
		if port == 0 {
			port = 8000
		}
		host := serveHostFlag
		if host == "" {
			host = appConfig.Server.Host
		}

		srv := server.New(a.service,
			server.WithTrace(a.trace),
			server.WithRateLimit(appConfig.Server.RateLimit, appConfig.Server.Burst),
		)
		return srv.Run(ctx, host, port)
	},
}
