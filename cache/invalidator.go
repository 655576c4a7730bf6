package cache

import (
	"context"
	"fmt"
	"log"
)

// KeyPrefix is shared by the response cache middleware and the invalidator so
// cached entries and purge patterns always agree.
const KeyPrefix = "cache:"

// Invalidator decides which cached course reads must be purged after a
// mutation. It invalidates by pattern, not exact key, because list responses
// are cached under query-dependent keys (page, limit, search) that cannot be
// enumerated in advance.
type Invalidator struct {
	store Store
}

func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// CourseMutated purges every course-list variant plus the detail keys of the
// mutated course. Failures are logged and swallowed: the cache is a latency
// optimization, and an unreachable cache only degrades reads to misses.
func (i *Invalidator) CourseMutated(ctx context.Context, courseID uint) {
	if i == nil || i.store == nil {
		return
	}

	patterns := []string{
		// Broad: all list variants, with and without query strings.
		KeyPrefix + "/api/courses",
		KeyPrefix + "/api/courses?*",
		// Narrow: the mutated course's detail key.
		fmt.Sprintf("%s/api/courses/%d*", KeyPrefix, courseID),
	}

	for _, pattern := range patterns {
		if err := i.store.DeletePattern(ctx, pattern); err != nil {
			log.Printf("Cache invalidation error for %q: %v", pattern, err)
		}
	}
}
