// Package driving defines what the CLI calls into: running a job,
// reading run history, and reading or changing settings.
//
// Implementations live in internal/core/services.
package driving
