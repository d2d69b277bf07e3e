package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Enumerator = (*Enumerator)(nil)

// Enumerator lists the files of one extension directly inside a folder.
// Sub-folders and hidden files are ignored.
type Enumerator struct {
	root string
	ext  string
}

// NewEnumerator creates an enumerator for files ending in ext (".pdf" or "pdf").
func NewEnumerator(root, ext string) *Enumerator {
	return &Enumerator{root: root, ext: NormaliseExt(ext)}
}

// NormaliseExt lower-cases an extension and ensures a leading dot.
func NormaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ListItems returns matching files sorted by name.
func (e *Enumerator) ListItems(ctx context.Context) ([]domain.ItemRef, error) {
	if e.ext == "" || e.ext == "." {
		return nil, fmt.Errorf("%w: extension is required", domain.ErrInvalidArgument)
	}

	root, err := filepath.Abs(e.root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", e.root, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", root, err)
	}

	var items []domain.ItemRef
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if !entry.Type().IsRegular() || isHidden(name) {
			continue
		}
		if strings.ToLower(filepath.Ext(name)) != e.ext {
			continue
		}
		path := filepath.Join(root, name)
		items = append(items, domain.ItemRef{
			ID:    path,
			Title: name,
			URI:   FileURI(path),
			Metadata: map[string]any{
				"extension": strings.TrimPrefix(e.ext, "."),
			},
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return items, nil
}

// isHidden reports whether a file name starts with a dot.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
