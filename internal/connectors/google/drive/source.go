package drive

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/quire/internal/connectors/google"
	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ContentSource = (*Source)(nil)

// Source downloads the content of Drive files.
type Source struct {
	svc     *drive.Service
	limiter *google.RateLimiter
}

// NewSource creates a Drive content source. A nil limiter uses the Drive defaults.
func NewSource(svc *drive.Service, limiter *google.RateLimiter) *Source {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultDriveRateLimit)
	}
	return &Source{svc: svc, limiter: limiter}
}

// Read downloads the file identified by ref.ID. Files larger than
// MaxDownloadSize fail permanently rather than being truncated.
func (s *Source) Read(ctx context.Context, ref domain.ItemRef) (*domain.Content, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.svc.Files.Get(ref.ID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		if google.IsRateLimited(err) {
			s.limiter.RecordRateLimitError(0)
		}
		return nil, google.WrapError(err, fmt.Sprintf("download %s", ref.Title))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, google.WrapError(err, fmt.Sprintf("read %s", ref.Title))
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrPermanent, ref.Title, MaxDownloadSize)
	}

	mimeType := ref.MetaString("mime_type")
	if mimeType == "" {
		mimeType = MimeTypeMarkdown
	}
	return &domain.Content{Data: data, MIMEType: mimeType}, nil
}
