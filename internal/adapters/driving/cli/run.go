package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
	"github.com/custodia-labs/quire/internal/core/services"
)

// pipelineFlags are shared by the commands that run a job.
type pipelineFlags struct {
	buckets     int
	concurrency int
	maxAttempts int
	backOffUnit time.Duration
	output      string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.buckets, "buckets", "k", 0, "number of artifacts to produce (default from config, else 1)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "fetches in flight per artifact (default from config, else 1)")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", 0, "attempts per item before it is skipped (default 3)")
	cmd.Flags().DurationVar(&f.backOffUnit, "back-off-unit", 0, "retry delay unit (default 1s)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory")
}

// config overlays explicitly set flags on the stored settings.
func (f *pipelineFlags) config(cmd *cobra.Command, a *App, pattern string) (domain.PipelineConfig, error) {
	cfg, err := a.Settings.Pipeline()
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("buckets") {
		cfg.BucketCount = f.buckets
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if cmd.Flags().Changed("max-attempts") {
		cfg.MaxAttempts = f.maxAttempts
	}
	if cmd.Flags().Changed("back-off-unit") {
		cfg.BackOffUnit = f.backOffUnit
	}
	if pattern != "" {
		cfg.OutputPattern = pattern
	}
	return cfg, nil
}

// newBundler builds the pipeline for a config. Tests replace it.
var newBundler = func(cfg domain.PipelineConfig, a *App) driving.Bundler {
	return services.NewPipeline(cfg, services.WithRunStore(a.Runs))
}

// runJob runs job until it finishes or the process is interrupted, then
// prints the summary. An empty run is reported but is not an error.
func runJob(cmd *cobra.Command, a *App, cfg domain.PipelineConfig, job driving.Job) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := newBundler(cfg, a).Run(ctx, job)
	printSummary(cmd.OutOrStdout(), summary)

	switch {
	case err == nil:
		if summary != nil && len(summary.FailedBuckets()) > 0 {
			return fmt.Errorf("%d of %d artifacts were not written", len(summary.FailedBuckets()), len(summary.Buckets))
		}
		return nil
	case errors.Is(err, domain.ErrCancelled):
		return fmt.Errorf("interrupted: %w", err)
	default:
		return err
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// firstNonEmpty returns the first argument that is not empty.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
