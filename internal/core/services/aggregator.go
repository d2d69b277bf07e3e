package services

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// RenderError reports that one item could not be rendered.
// The item is skipped; the artifact is still usable.
type RenderError struct {
	Ref domain.ItemRef
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Ref.ID, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// AggregationWriter merges rendered items into one artifact.
// It holds at most one rendered block in memory at a time.
type AggregationWriter struct {
	w       driven.ArtifactWriter
	r       driven.Renderer
	written int
	done    bool
}

// NewAggregationWriter wraps an open artifact.
// The caller must end it with Commit or Abort.
func NewAggregationWriter(w driven.ArtifactWriter, r driven.Renderer) *AggregationWriter {
	return &AggregationWriter{w: w, r: r}
}

// WriteItem renders and appends one item, preceded by the separator unless
// it is the first item written.
func (a *AggregationWriter) WriteItem(ref domain.ItemRef, content *domain.Content) error {
	if a.done {
		return fmt.Errorf("%w: artifact already closed", domain.ErrWriteFailed)
	}

	block, err := a.r.Render(ref, content)
	if err != nil {
		return &RenderError{Ref: ref, Err: err}
	}

	if a.written > 0 {
		if sep := a.r.Separator(); len(sep) > 0 {
			if err := a.w.WriteBlock(sep); err != nil {
				return writeError(err)
			}
		}
	}
	if err := a.w.WriteBlock(block); err != nil {
		return writeError(err)
	}

	a.written++
	return nil
}

// Written returns the number of items written so far.
func (a *AggregationWriter) Written() int {
	return a.written
}

// Location returns the artifact location.
func (a *AggregationWriter) Location() string {
	return a.w.Location()
}

// Commit publishes the artifact.
func (a *AggregationWriter) Commit() error {
	if a.done {
		return nil
	}
	a.done = true
	if err := a.w.Commit(); err != nil {
		return writeError(err)
	}
	return nil
}

// Abort discards the artifact. It is a no-op after Commit.
func (a *AggregationWriter) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	return a.w.Abort()
}

// writeError tags sink failures as write failures unless they already say
// the destination is unusable.
func writeError(err error) error {
	if errors.Is(err, domain.ErrDestinationUnusable) || errors.Is(err, domain.ErrWriteFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrWriteFailed, err)
}
