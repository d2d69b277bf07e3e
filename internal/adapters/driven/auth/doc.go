// Package auth provides TokenProvider implementations.
//
//   - PATProvider resolves a GitHub personal access token from the
//     environment or the config file.
//   - GoogleTokenProvider serves Google OAuth access tokens from a cached
//     token file, refreshing and re-saving them as needed.
package auth
