package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run one of the system's component binaries",
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	return ctx, cancel
}

// runWorker runs a non-HTTP component's blocking Run loop, applying a
// hard grace deadline once ctx is cancelled: if in-flight work hasn't
// drained within grace, the process exits anyway rather than hanging
// indefinitely on a stuck collaborator.
func runWorker(ctx context.Context, grace time.Duration, run func(context.Context) error) error {
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		log.Warn().Dur("grace_period", grace).Msg("forced shutdown after grace period elapsed with work still in flight")
		return nil
	}
}
