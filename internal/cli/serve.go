package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"lazy-tourist-be/internal/bootstrap"
	"lazy-tourist-be/internal/server"
	"lazy-tourist-be/internal/tracer"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cmd.Flags().Changed("port") {
				cfg.App.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracer := tracer.InitTracer("lazy-tourist-api")
			defer shutdownTracer(context.Background())

			container, err := bootstrap.NewContainer(ctx, cfg)
			if err != nil {
				return &ExitError{Code: ExitFailure, Err: err}
			}
			defer container.Close()

			if err := container.ConsumerService.Consume(ctx); err != nil {
				container.Logger.Warn("EVENTS", "Audit consumer not started", map[string]interface{}{"error": err.Error()})
			}

			srv := server.New(cfg, container)
			go func() {
				<-ctx.Done()
				srv.Shutdown()
			}()
			return srv.Run()
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default APP_PORT or 3000)")
	return cmd
}
