package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"autosub/internal/api"
	"autosub/internal/jobs"
	"autosub/internal/pipeline"
)

func newServeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and process jobs with a worker pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.WorkDir, "autosub.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return errors.New("another autosub server is already running")
			}
			defer func() { _ = lock.Unlock() }()

			store, err := jobs.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			orchestrator, err := buildOrchestrator(cfg, store, logger)
			if err != nil {
				return err
			}
			pool := pipeline.NewPool(orchestrator, cfg.Workflow.Workers, cfg.Workflow.QueueSize, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool.Start(ctx)
			server := api.NewServer(cfg, store, pool, logger)
			err = server.ListenAndServe(ctx)
			pool.Wait()
			return err
		},
	}
}
