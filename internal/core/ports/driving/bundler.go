package driving

import (
	"context"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// PlanMode selects how enumerated items are assigned to artifacts.
type PlanMode string

const (
	// PlanBalanced splits items into BucketCount buckets of near-equal size.
	PlanBalanced PlanMode = "balanced"

	// PlanByGroup produces one artifact per distinct ItemRef.Group,
	// in order of first appearance.
	PlanByGroup PlanMode = "group"
)

// Job wires the collaborators of one pipeline run.
type Job struct {
	// Kind labels the run in summaries and history (issues, drive, merge).
	Kind string

	Enumerator driven.Enumerator
	Source     driven.ContentSource
	Renderer   driven.Renderer
	Sink       driven.ArtifactSink

	// Plan defaults to PlanBalanced.
	Plan PlanMode

	// GroupPattern names artifacts in PlanByGroup mode, e.g. "%s.md".
	// Defaults to "%s".
	GroupPattern string
}

// Bundler runs partition-and-merge jobs.
type Bundler interface {
	// Run executes the job and returns its summary.
	// A non-nil summary is returned for every run that got past configuration,
	// including failed and cancelled runs.
	Run(ctx context.Context, job Job) (*domain.RunSummary, error)
}
