package driven

import "context"

// ArtifactSink creates output artifacts.
type ArtifactSink interface {
	// Create opens a fresh artifact with the given name.
	// Errors wrapping domain.ErrDestinationUnusable halt the whole run.
	Create(ctx context.Context, name string) (ArtifactWriter, error)
}

// ArtifactWriter is a scoped handle on one artifact.
// Nothing becomes visible at Location until Commit succeeds.
type ArtifactWriter interface {
	// WriteBlock appends one rendered block or separator.
	WriteBlock(p []byte) error

	// Location returns where the committed artifact lives.
	Location() string

	// Commit flushes and publishes the artifact.
	Commit() error

	// Abort discards everything written so far.
	// Abort after a successful Commit is a no-op.
	Abort() error
}
