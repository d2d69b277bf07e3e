package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quire/internal/core/domain"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name  string
		total int
		k     int
		want  []int
	}{
		{name: "remainder goes to the front", total: 10, k: 3, want: []int{4, 3, 3}},
		{name: "fifteen into four", total: 15, k: 4, want: []int{4, 4, 4, 3}},
		{name: "even split", total: 9, k: 3, want: []int{3, 3, 3}},
		{name: "more buckets than items", total: 2, k: 5, want: []int{1, 1}},
		{name: "single bucket", total: 7, k: 1, want: []int{7}},
		{name: "single item", total: 1, k: 3, want: []int{1}},
		{name: "no items", total: 0, k: 4, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Partition(tt.total, tt.k)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartition_InvalidArguments(t *testing.T) {
	_, err := Partition(10, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Partition(10, -2)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = Partition(-1, 3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPartition_Properties(t *testing.T) {
	for total := 0; total <= 40; total++ {
		for k := 1; k <= 12; k++ {
			sizes, err := Partition(total, k)
			require.NoError(t, err)

			assert.Len(t, sizes, min(k, total), "total=%d k=%d", total, k)

			sum, lo, hi := 0, total, 0
			for i, s := range sizes {
				sum += s
				lo, hi = min(lo, s), max(hi, s)
				assert.Positive(t, s, "total=%d k=%d: empty bucket", total, k)
				if i > 0 {
					assert.LessOrEqual(t, s, sizes[i-1], "total=%d k=%d: larger bucket after smaller", total, k)
				}
			}
			assert.Equal(t, total, sum, "total=%d k=%d", total, k)
			if len(sizes) > 0 {
				assert.LessOrEqual(t, hi-lo, 1, "total=%d k=%d: unbalanced", total, k)
			}
		}
	}
}

func TestSplit_ContiguousAndOrdered(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	buckets, err := Split(items, 3)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1, 2, 3, 4}, {5, 6, 7}, {8, 9, 10}}, buckets)
}

func TestSplit_Empty(t *testing.T) {
	buckets, err := Split([]string{}, 3)
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestSplit_AppendDoesNotClobberNextBucket(t *testing.T) {
	items := []int{1, 2, 3, 4}

	buckets, err := Split(items, 2)
	require.NoError(t, err)

	_ = append(buckets[0], 99)
	assert.Equal(t, []int{3, 4}, buckets[1])
}

func TestSplit_InvalidK(t *testing.T) {
	_, err := Split([]int{1}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
