package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/viral-factory/internal/config"
	"github.com/jonathan/viral-factory/internal/worker"
)

var workerConfigPath string

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the pipeline worker",
	Long: `Start the long-running worker: job queue consumers for ideation,
asset generation, scoring, rewriting, scheduling and publishing, plus the
periodic metrics sync, pattern mining and held-schedule sweeps.

Configuration can be loaded from a JSON file using --config. Environment
variables override config file values.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().StringVar(&workerConfigPath, "config", "", "Path to config.json file (values can be overridden by environment variables)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(workerConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := worker.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to build worker runtime: %w", err)
	}
	defer rt.Close()

	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	<-ctx.Done()
	logger.Printf("[Worker] shutdown signal received, draining")
	return nil
}
