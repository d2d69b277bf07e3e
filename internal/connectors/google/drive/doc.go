// Package drive implements the Google Drive connector.
//
// The Enumerator walks a folder tree (shared drives included, trashed files
// skipped) and returns files of one extension, optionally grouped by their
// top-level folder. The Source downloads each file's bytes.
//
// Every request goes through a google.RateLimiter and failures are mapped
// with google.WrapError, so 429 and 5xx responses are retried by the pipeline.
package drive
