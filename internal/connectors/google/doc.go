// Package google provides shared infrastructure for the Google Drive connector.
//
// It contains:
//   - a TokenSource adapter bridging quire's TokenProvider to oauth2.TokenSource
//   - the Drive service factory
//   - classification of Google API errors into transient and permanent failures
//   - rate limiting to respect Drive API quotas
//
// # Usage
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewDriveService(ctx, ts)
//
// # OAuth2 Scopes
//
// Only https://www.googleapis.com/auth/drive.readonly is requested.
package google
