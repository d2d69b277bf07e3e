// Package file implements an ArtifactSink that writes text artifacts into a
// local directory. Each artifact is written to a hidden temporary file and
// renamed into place on Commit, so readers never see a partial artifact.
package file

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// File permissions for artifacts and the output directory.
const (
	FileMode = 0o644
	DirMode  = 0o755
)

// Verify interface compliance.
var (
	_ driven.ArtifactSink   = (*Sink)(nil)
	_ driven.ArtifactWriter = (*Writer)(nil)
)

// Sink creates artifacts in a directory, creating it on first use.
type Sink struct {
	dir string
}

// New creates a sink writing into dir.
func New(dir string) *Sink {
	return &Sink{dir: dir}
}

// Dir returns the output directory.
func (s *Sink) Dir() string {
	return s.dir
}

// Create opens a temporary file for the artifact name.
// A directory that cannot be created or written is reported as
// domain.ErrDestinationUnusable.
func (s *Sink) Create(ctx context.Context, name string) (driven.ArtifactWriter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("%w: invalid artifact name %q", domain.ErrInvalidArgument, name)
	}

	if err := os.MkdirAll(s.dir, DirMode); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", domain.ErrDestinationUnusable, s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDestinationUnusable, err)
	}

	return &Writer{
		tmp:  tmp,
		buf:  bufio.NewWriter(tmp),
		path: filepath.Join(s.dir, name),
	}, nil
}

// Writer buffers blocks into a temporary file.
type Writer struct {
	tmp  *os.File
	buf  *bufio.Writer
	path string
	done bool
}

// WriteBlock appends p to the artifact.
func (w *Writer) WriteBlock(p []byte) error {
	if w.done {
		return fmt.Errorf("%w: %s is closed", domain.ErrWriteFailed, w.path)
	}
	if _, err := w.buf.Write(p); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWriteFailed, err)
	}
	return nil
}

// Location returns the final path of the artifact.
func (w *Writer) Location() string {
	return w.path
}

// Commit flushes the temporary file and renames it over the final path.
func (w *Writer) Commit() error {
	if w.done {
		return nil
	}
	w.done = true

	err := w.buf.Flush()
	if err == nil {
		err = w.tmp.Sync()
	}
	if cerr := w.tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(w.tmp.Name(), FileMode)
	}
	if err == nil {
		err = os.Rename(w.tmp.Name(), w.path)
	}
	if err != nil {
		_ = os.Remove(w.tmp.Name())
		return fmt.Errorf("%w: commit %s: %w", domain.ErrWriteFailed, w.path, err)
	}
	return nil
}

// Abort discards the temporary file. Abort after Commit is a no-op.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true

	closeErr := w.tmp.Close()
	if err := os.Remove(w.tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("discard %s: %w", w.tmp.Name(), err)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("discard %s: %w", w.tmp.Name(), closeErr)
	}
	return nil
}
