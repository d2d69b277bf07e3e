// Package github reads issues from a GitHub repository.
//
// An [IssueEnumerator] runs one issue search (repo, label, and state qualifiers,
// oldest first) and returns the results as item references. An [IssueSource]
// then loads each issue's comments and encodes the issue as JSON for the
// issue renderer.
//
// # Authentication
//
// Requests are authenticated with a personal access token supplied by a
// [driven.TokenProvider]. The GITHUB_TOKEN environment variable takes
// precedence over a token stored with "quire auth github".
//
// # Rate limiting
//
// Every request passes through a [RateLimiter] that combines a proactive token
// bucket with the X-RateLimit headers GitHub returns. Exceeding the limit
// yields a [RateLimitError], which the pipeline treats as transient.
//
// # Errors
//
// Server errors (5xx), rate limiting, and network timeouts are marked
// transient. 404 maps to [domain.ErrNotFound] and 401 to
// [domain.ErrAuthInvalid]; both fail the item immediately.
package github
