package domain

import "time"

// RunState is the terminal state of a pipeline run.
type RunState string

// Run states.
const (
	// RunCompleted means every bucket was processed. Some items may have been skipped.
	RunCompleted RunState = "completed"
	// RunEmpty means enumeration found nothing to do.
	RunEmpty RunState = "empty"
	// RunCancelled means the context was cancelled mid-run.
	RunCancelled RunState = "cancelled"
	// RunFailed means a fatal error stopped the run.
	RunFailed RunState = "failed"
)

// ItemStatus is the per-item outcome.
type ItemStatus string

// Item statuses.
const (
	ItemWritten      ItemStatus = "written"
	ItemSkipped      ItemStatus = "skipped"
	ItemNotAttempted ItemStatus = "not_attempted"
)

// ItemOutcome records what happened to one item.
type ItemOutcome struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   ItemStatus `json:"status"`
	Reason   string     `json:"reason,omitempty"`
	Attempts int        `json:"attempts,omitempty"`
}

// BucketResult records the outcome of one bucket.
type BucketResult struct {
	Index     int           `json:"index"`
	Name      string        `json:"name"`
	Location  string        `json:"location,omitempty"`
	Committed bool          `json:"committed"`
	Error     string        `json:"error,omitempty"`
	Items     []ItemOutcome `json:"items"`
}

// Size returns the number of items assigned to the bucket.
func (b BucketResult) Size() int {
	return len(b.Items)
}

// Count returns how many items in the bucket have the given status.
func (b BucketResult) Count(status ItemStatus) int {
	n := 0
	for _, it := range b.Items {
		if it.Status == status {
			n++
		}
	}
	return n
}

// RunSummary is the single observable record of a pipeline run.
type RunSummary struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	State      RunState       `json:"state"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	TotalItems int            `json:"total_items"`
	Buckets    []BucketResult `json:"buckets"`
	Error      string         `json:"error,omitempty"`
}

// BucketSizes returns the planned item count of every bucket, in order.
func (s *RunSummary) BucketSizes() []int {
	sizes := make([]int, len(s.Buckets))
	for i, b := range s.Buckets {
		sizes[i] = b.Size()
	}
	return sizes
}

// Written returns the number of items written across all buckets.
func (s *RunSummary) Written() int {
	n := 0
	for _, b := range s.Buckets {
		n += b.Count(ItemWritten)
	}
	return n
}

// Skipped returns every skipped item, in bucket order.
func (s *RunSummary) Skipped() []ItemOutcome {
	var out []ItemOutcome
	for _, b := range s.Buckets {
		for _, it := range b.Items {
			if it.Status == ItemSkipped {
				out = append(out, it)
			}
		}
	}
	return out
}

// Locations returns the committed artifact locations, in bucket order.
func (s *RunSummary) Locations() []string {
	var out []string
	for _, b := range s.Buckets {
		if b.Committed && b.Location != "" {
			out = append(out, b.Location)
		}
	}
	return out
}

// Duration returns how long the run took.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// FailedBuckets returns the buckets that did not produce a committed artifact.
func (s *RunSummary) FailedBuckets() []BucketResult {
	var out []BucketResult
	for _, b := range s.Buckets {
		if !b.Committed {
			out = append(out, b)
		}
	}
	return out
}
