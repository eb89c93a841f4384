package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	bootstrap "github.com/K-John/createrington-sub002"
	"github.com/K-John/createrington-sub002/internal/app"
	"github.com/K-John/createrington-sub002/internal/config"
	"github.com/K-John/createrington-sub002/internal/logger"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start all platform services",
		RunE:  runStart,
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Logging)

	container, err := app.Build(cfg, log)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container.InitializeAll(ctx)

	// The database underpins everything; a platform without it is not worth
	// keeping up even though the container tolerates the partial failure.
	if state, _ := container.State(app.ServiceDatabase); state == bootstrap.StateFailed {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := container.Shutdown(shutdownCtx); err != nil {
			log.Error("teardown after failed startup", "error", err)
		}
		return fmt.Errorf("database failed to initialize")
	}

	log.Info("platform started")
	<-ctx.Done()
	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return container.Shutdown(shutdownCtx)
}
