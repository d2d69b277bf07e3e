package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ContentSource = (*Source)(nil)

// customMIMETypes covers extensions the mime package does not know everywhere.
var customMIMETypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".pdf":      "application/pdf",
}

// Source reads local files.
type Source struct{}

// NewSource creates a filesystem content source.
func NewSource() *Source {
	return &Source{}
}

// Read returns the bytes of the file at ref.URI, or ref.ID when no URI is set.
// Missing files are reported as domain.ErrNotFound. Local reads are never transient.
func (s *Source) Read(ctx context.Context, ref domain.ItemRef) (*domain.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := ref.ID
	if ref.URI != "" {
		path = PathFromURI(ref.URI)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &domain.Content{Data: data, MIMEType: detectMIMEType(path)}, nil
}

// detectMIMEType returns the MIME type for a path, without parameters.
func detectMIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := customMIMETypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "application/octet-stream"
	}
	if i := strings.Index(t, ";"); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}
