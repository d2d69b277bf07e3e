package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/quire/internal/core/domain"
	"github.com/custodia-labs/quire/internal/core/ports/driving"
)

const (
	defaultGroupPattern = "%s"
	ungroupedName       = "ungrouped"
)

// PlanBuckets assigns items to buckets according to the job's plan mode.
func PlanBuckets(items []domain.ItemRef, cfg domain.PipelineConfig, job driving.Job) ([]domain.Bucket, error) {
	switch job.Plan {
	case "", driving.PlanBalanced:
		return planBalanced(items, cfg)
	case driving.PlanByGroup:
		return planByGroup(items, groupPattern(job)), nil
	default:
		return nil, fmt.Errorf("%w: unknown plan mode %q", domain.ErrInvalidArgument, job.Plan)
	}
}

func planBalanced(items []domain.ItemRef, cfg domain.PipelineConfig) ([]domain.Bucket, error) {
	groups, err := Split(items, cfg.BucketCount)
	if err != nil {
		return nil, err
	}

	buckets := make([]domain.Bucket, len(groups))
	for i, g := range groups {
		buckets[i] = domain.Bucket{
			Index: i + 1,
			Name:  cfg.ArtifactName(i + 1),
			Items: g,
		}
	}
	return buckets, nil
}

// planByGroup keeps the enumeration order inside each group and orders
// groups by first appearance.
func planByGroup(items []domain.ItemRef, pattern string) []domain.Bucket {
	var buckets []domain.Bucket
	index := make(map[string]int)

	for _, it := range items {
		i, ok := index[it.Group]
		if !ok {
			i = len(buckets)
			index[it.Group] = i
			buckets = append(buckets, domain.Bucket{
				Index: i + 1,
				Name:  fmt.Sprintf(pattern, groupFileName(it.Group)),
			})
		}
		buckets[i].Items = append(buckets[i].Items, it)
	}
	return buckets
}

func groupPattern(job driving.Job) string {
	if job.GroupPattern == "" {
		return defaultGroupPattern
	}
	return job.GroupPattern
}

func groupFileName(group string) string {
	name := strings.TrimSpace(group)
	if name == "" {
		return ungroupedName
	}
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
