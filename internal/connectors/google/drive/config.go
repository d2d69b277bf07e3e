package drive

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// Drive MIME types.
const (
	MimeTypeFolder   = "application/vnd.google-apps.folder"
	MimeTypeMarkdown = "text/markdown"
)

// MaxDownloadSize is the maximum number of bytes read for one file (5MB).
const MaxDownloadSize = 5 * 1024 * 1024

// DefaultOutputDir is where Drive artifacts are written.
const DefaultOutputDir = "merged_markdown"

// Config holds Google Drive connector configuration.
type Config struct {
	// RootFolderID is the folder every listing starts from.
	RootFolderID string
	// Extension selects files by name suffix, case-insensitively.
	Extension string
	// PerFolder restricts the listing to files below top-level
	// sub-folders and groups them by that folder's name.
	PerFolder bool
	// PageSize is the page size for API requests.
	PageSize int64
}

// DefaultConfig returns the default configuration for a root folder.
func DefaultConfig(rootFolderID string) *Config {
	return &Config{
		RootFolderID: rootFolderID,
		Extension:    ".md",
		PageSize:     1000,
	}
}

// Validate checks that the configuration can be used for a listing.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootFolderID) == "" {
		return fmt.Errorf("%w: drive root folder id is required", domain.ErrInvalidArgument)
	}
	if strings.ContainsAny(c.RootFolderID, `'\`) {
		return fmt.Errorf("%w: drive folder id %q contains quotes", domain.ErrInvalidArgument, c.RootFolderID)
	}
	if c.Extension == "" {
		return fmt.Errorf("%w: extension is required", domain.ErrInvalidArgument)
	}
	return nil
}

// matches reports whether a file name carries the configured extension.
func (c *Config) matches(name string) bool {
	ext := c.Extension
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext))
}

// childrenQuery selects the non-trashed children of a folder.
func childrenQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed=false", folderID)
}

// foldersQuery selects the non-trashed sub-folders of a folder.
func foldersQuery(folderID string) string {
	return fmt.Sprintf("%s and mimeType='%s'", childrenQuery(folderID), MimeTypeFolder)
}

// FileURI returns the stable locator of a Drive file.
func FileURI(id string) string {
	return "gdrive://files/" + id
}
