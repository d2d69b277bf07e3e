package drive

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/quire/internal/connectors/google"
	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
	"github.com/custodia-labs/quire/internal/logger"
)

const listFields = "nextPageToken, files(id, name, mimeType, size)"

// Verify interface compliance.
var _ driven.Enumerator = (*Enumerator)(nil)

// Enumerator lists files below a Drive folder, descending into sub-folders.
// Shared drives are included and trashed files are skipped.
type Enumerator struct {
	svc     *drive.Service
	cfg     *Config
	limiter *google.RateLimiter
}

// NewEnumerator creates an enumerator. A nil limiter uses the Drive defaults.
func NewEnumerator(svc *drive.Service, cfg *Config, limiter *google.RateLimiter) *Enumerator {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultDriveRateLimit)
	}
	return &Enumerator{svc: svc, cfg: cfg, limiter: limiter}
}

// ListItems walks the folder tree depth-first in listing order.
// In per-folder mode only files below top-level sub-folders are returned,
// each with Group set to its top-level folder name; empty folders are
// logged and skipped. An empty root in per-folder mode is an error.
func (e *Enumerator) ListItems(ctx context.Context) ([]domain.ItemRef, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	if !e.cfg.PerFolder {
		var items []domain.ItemRef
		err := e.walk(ctx, e.cfg.RootFolderID, "", &items)
		return items, err
	}

	folders, err := e.TopLevelFolders(ctx)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("%w: no sub-folders under %s", domain.ErrNotFound, e.cfg.RootFolderID)
	}

	var items []domain.ItemRef
	for _, folder := range folders {
		before := len(items)
		if err := e.walk(ctx, folder.Id, folder.Name, &items); err != nil {
			return nil, err
		}
		if len(items) == before {
			logger.Warn("folder %q has no %s files, skipped", folder.Name, e.cfg.Extension)
		}
	}
	return items, nil
}

// TopLevelFolders returns the direct sub-folders of the root folder.
func (e *Enumerator) TopLevelFolders(ctx context.Context) ([]*drive.File, error) {
	var folders []*drive.File
	err := e.list(ctx, foldersQuery(e.cfg.RootFolderID), func(f *drive.File) error {
		folders = append(folders, f)
		return nil
	})
	return folders, err
}

func (e *Enumerator) walk(ctx context.Context, folderID, group string, items *[]domain.ItemRef) error {
	return e.list(ctx, childrenQuery(folderID), func(f *drive.File) error {
		if f.MimeType == MimeTypeFolder {
			logger.Debug("descending into %s", f.Name)
			return e.walk(ctx, f.Id, group, items)
		}
		if !e.cfg.matches(f.Name) {
			return nil
		}
		*items = append(*items, domain.ItemRef{
			ID:    f.Id,
			Title: f.Name,
			URI:   FileURI(f.Id),
			Group: group,
			Metadata: map[string]any{
				"mime_type": f.MimeType,
				"size":      f.Size,
			},
		})
		return nil
	})
}

// list pages through a files query, calling fn for every file.
func (e *Enumerator) list(ctx context.Context, query string, fn func(*drive.File) error) error {
	pageToken := ""
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return err
		}

		call := e.svc.Files.List().
			Q(query).
			Fields(listFields).
			OrderBy("name").
			SupportsAllDrives(true).
			IncludeItemsFromAllDrives(true).
			Context(ctx)
		if e.cfg.PageSize > 0 {
			call = call.PageSize(e.cfg.PageSize)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			if google.IsRateLimited(err) {
				e.limiter.RecordRateLimitError(0)
			}
			return google.WrapError(err, "list files")
		}

		for _, f := range resp.Files {
			if err := fn(f); err != nil {
				return err
			}
		}

		if resp.NextPageToken == "" {
			return nil
		}
		pageToken = resp.NextPageToken
	}
}
