package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coreybb/lectio/api"
	"github.com/coreybb/lectio/scheduler"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port   string
		noCron bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily schedule",
		Long: `Run the HTTP API and send each day's chapter at the plan's daily_time.

Endpoints:
  GET  /healthz
  POST /scheduler/tick
  GET  /api/plan?upcoming=N
  GET  /api/deliveries?limit=N`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, root.cfg, scheduler.Options{PlanFile: root.planFile})
			if err != nil {
				return err
			}
			defer a.Close()

			if !noCron {
				if err := a.scheduler.StartCron(ctx); err != nil {
					return err
				}
			}

			if port == "" {
				port = root.cfg.Port
			}
			return startServer(ctx, port, api.SetupRoutes(a.scheduler, a.attempts))
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT or 8080)")
	cmd.Flags().BoolVar(&noCron, "no-cron", false, "only serve HTTP; rely on POST /scheduler/tick")
	return cmd
}

// startServer serves until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, port string, router http.Handler) error {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("INFO (Server): Starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	log.Println("INFO (Server): Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN (Server): Graceful shutdown failed: %v", err)
		return err
	}

	log.Println("INFO (Server): Server gracefully stopped")
	return nil
}
