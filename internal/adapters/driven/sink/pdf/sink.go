// Package pdf implements an ArtifactSink that merges PDF documents.
//
// Blocks are spooled to a hidden directory next to the artifact and merged
// with pdfcpu on Commit. The merged file is renamed into place, so an
// aborted or failed bucket never leaves a partial PDF behind.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	pdfrender "github.com/custodia-labs/quire/internal/renderers/pdf"
)

// Verify interface compliance.
var (
	_ driven.ArtifactSink   = (*Sink)(nil)
	_ driven.ArtifactWriter = (*Writer)(nil)
)

// Sink merges PDF blocks into artifacts inside a directory.
type Sink struct {
	dir     string
	divider bool
	conf    *model.Configuration
}

// Option configures a Sink.
type Option func(*Sink)

// WithDividerPages inserts a blank page between merged documents.
func WithDividerPages(on bool) Option {
	return func(s *Sink) { s.divider = on }
}

// New creates a sink writing into dir.
func New(dir string, opts ...Option) *Sink {
	s := &Sink{dir: dir, conf: pdfrender.Configuration()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create prepares a spool directory for the artifact name.
func (s *Sink) Create(ctx context.Context, name string) (driven.ArtifactWriter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: invalid artifact name %q", domain.ErrInvalidArgument, name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", domain.ErrDestinationUnusable, s.dir, err)
	}

	spool, err := os.MkdirTemp(s.dir, "."+name+".parts-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDestinationUnusable, err)
	}

	return &Writer{sink: s, spool: spool, path: filepath.Join(s.dir, name)}, nil
}

// Writer collects PDF documents for one artifact.
type Writer struct {
	sink  *Sink
	spool string
	path  string
	parts []string
	done  bool
}

// WriteBlock spools one PDF document. Empty blocks are ignored.
func (w *Writer) WriteBlock(p []byte) error {
	if w.done {
		return fmt.Errorf("%w: %s is closed", domain.ErrWriteFailed, w.path)
	}
	if len(p) == 0 {
		return nil
	}

	part := filepath.Join(w.spool, fmt.Sprintf("part-%05d.pdf", len(w.parts)+1))
	if err := os.WriteFile(part, p, 0o600); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteFailed, err)
	}
	w.parts = append(w.parts, part)
	return nil
}

// Location returns the final path of the artifact.
func (w *Writer) Location() string {
	return w.path
}

// Parts returns the number of spooled documents.
func (w *Writer) Parts() int {
	return len(w.parts)
}

// Commit merges the spooled documents and renames the result into place.
// An artifact with no documents cannot be committed.
func (w *Writer) Commit() error {
	if w.done {
		return nil
	}
	w.done = true
	defer os.RemoveAll(w.spool)

	if len(w.parts) == 0 {
		return fmt.Errorf("%w: %s has no documents", domain.ErrWriteFailed, w.path)
	}

	merged := filepath.Join(w.spool, "merged.pdf")
	var err error
	if len(w.parts) == 1 {
		err = os.Rename(w.parts[0], merged)
	} else {
		err = api.MergeCreateFile(w.parts, merged, w.sink.divider, w.sink.conf)
	}
	if err == nil {
		err = os.Chmod(merged, 0o644)
	}
	if err == nil {
		err = os.Rename(merged, w.path)
	}
	if err != nil {
		return fmt.Errorf("%w: merge %s: %w", domain.ErrWriteFailed, w.path, err)
	}
	return nil
}

// Abort discards the spooled documents. Abort after Commit is a no-op.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	if err := os.RemoveAll(w.spool); err != nil {
		return fmt.Errorf("discard %s: %w", w.spool, err)
	}
	return nil
}
