package services

import (
	"fmt"

	"github.com/custodia-labs/quire/internal/core/domain"
)

// Partition returns the bucket sizes for total items split into k buckets.
//
// The effective bucket count is min(k, total) so no bucket is ever empty.
// Sizes differ by at most one and the remainder goes to the front:
// 10 items into 3 buckets is [4 3 3]. Zero items yield no buckets.
func Partition(total, k int) ([]int, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: bucket count must be positive, got %d", domain.ErrInvalidArgument, k)
	}
	if total < 0 {
		return nil, fmt.Errorf("%w: item count must not be negative, got %d", domain.ErrInvalidArgument, total)
	}
	if total == 0 {
		return []int{}, nil
	}

	n := min(k, total)
	base, remainder := total/n, total%n

	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = base
		if i < remainder {
			sizes[i]++
		}
	}
	return sizes, nil
}

// Split applies Partition to an ordered slice.
// The returned buckets are contiguous, in order, and cover items exactly once.
// Each bucket's capacity is clipped so appending to it cannot overwrite the next one.
func Split[T any](items []T, k int) ([][]T, error) {
	sizes, err := Partition(len(items), k)
	if err != nil {
		return nil, err
	}

	buckets := make([][]T, len(sizes))
	start := 0
	for i, size := range sizes {
		end := start + size
		buckets[i] = items[start:end:end]
		start = end
	}
	return buckets, nil
}
