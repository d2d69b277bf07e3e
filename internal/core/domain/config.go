package domain

import (
	"fmt"
	"strings"
	"time"
)

// Pipeline defaults.
const (
	DefaultMaxAttempts   = 3
	DefaultBackOffBase   = 2.0
	DefaultBackOffUnit   = time.Second
	DefaultOutputPattern = "merged_%02d"
	DefaultConcurrency   = 1
)

// PipelineConfig is the explicit configuration passed to the pipeline driver.
type PipelineConfig struct {
	// BucketCount is the target number of artifacts (K).
	BucketCount int

	// MaxAttempts is the retry ceiling per item, including the first attempt.
	MaxAttempts int

	// BackOffBase is raised to the attempt number to compute the retry delay.
	BackOffBase float64

	// BackOffUnit is the duration of one delay unit.
	BackOffUnit time.Duration

	// MaxBackOff caps a single retry delay. Zero means uncapped.
	MaxBackOff time.Duration

	// OutputPattern produces an artifact name from a 1-based bucket index,
	// e.g. "issues_%02d.md".
	OutputPattern string

	// Concurrency is the number of fetches allowed in flight within a bucket.
	// Artifacts are always written in enumeration order.
	Concurrency int
}

// DefaultPipelineConfig returns the defaults for a single artifact.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		BucketCount:   1,
		MaxAttempts:   DefaultMaxAttempts,
		BackOffBase:   DefaultBackOffBase,
		BackOffUnit:   DefaultBackOffUnit,
		OutputPattern: DefaultOutputPattern,
		Concurrency:   DefaultConcurrency,
	}
}

// Validate reports the first malformed field as ErrInvalidArgument.
func (c PipelineConfig) Validate() error {
	switch {
	case c.BucketCount <= 0:
		return fmt.Errorf("%w: bucket count must be positive, got %d", ErrInvalidArgument, c.BucketCount)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("%w: max attempts must be positive, got %d", ErrInvalidArgument, c.MaxAttempts)
	case c.BackOffBase < 1:
		return fmt.Errorf("%w: back-off base must be at least 1, got %g", ErrInvalidArgument, c.BackOffBase)
	case c.BackOffUnit < 0:
		return fmt.Errorf("%w: back-off unit must not be negative", ErrInvalidArgument)
	case c.MaxBackOff < 0:
		return fmt.Errorf("%w: max back-off must not be negative", ErrInvalidArgument)
	case c.Concurrency <= 0:
		return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidArgument, c.Concurrency)
	}
	return validatePattern(c.OutputPattern)
}

// ArtifactName formats the output pattern for a 1-based bucket index.
func (c PipelineConfig) ArtifactName(index int) string {
	return fmt.Sprintf(c.OutputPattern, index)
}

func validatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("%w: output pattern is empty", ErrInvalidArgument)
	}
	if strings.ContainsAny(pattern, `/\`) {
		return fmt.Errorf("%w: output pattern %q must not contain a path separator", ErrInvalidArgument, pattern)
	}
	first, second := fmt.Sprintf(pattern, 1), fmt.Sprintf(pattern, 2)
	if strings.Contains(first, "%!") {
		return fmt.Errorf("%w: output pattern %q must contain exactly one integer verb", ErrInvalidArgument, pattern)
	}
	if first == second {
		return fmt.Errorf("%w: output pattern %q does not vary with the bucket index", ErrInvalidArgument, pattern)
	}
	return nil
}
