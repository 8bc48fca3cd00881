package postprocess

import (
	"sort"

	"github.com/armaint/go-detect/images"
)

// DefaultMaxDetections caps how many boxes a single frame can produce.
const DefaultMaxDetections = 300

// classOffset shifts each box by its class index before the overlap
// tests, so boxes of different classes can never suppress each other in
// the single combined pass. It only needs to exceed any plausible image
// dimension.
const classOffset = 7680

// Config defines parameters for Non-Maximum Suppression.
type Config struct {
	// IoUThreshold is the overlap above which a lower-confidence box of
	// the same class is suppressed.
	IoUThreshold float32
	// MaxDetections caps the accepted boxes; <= 0 means
	// DefaultMaxDetections.
	MaxDetections int
}

// Apply runs class-aware greedy Non-Maximum Suppression: candidates are
// sorted by descending confidence and accepted in that order, each
// accepted box suppressing every later same-class box that overlaps it
// beyond the IoU threshold. The sort is stable, so equal scores keep
// their input order. The input slice is reordered in place.
func Apply(candidates []Result, cfg Config) []Result {
	n := len(candidates)
	if n == 0 {
		return nil
	}
	limit := cfg.MaxDetections
	if limit <= 0 {
		limit = DefaultMaxDetections
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	// Class-shifted copies keep different classes geometrically disjoint
	// without a per-class pass.
	shifted := make([]images.Rect, n)
	for i, c := range candidates {
		off := float32(c.Class) * classOffset
		shifted[i] = c.Box.Offset(off, off)
	}

	suppressed := make([]bool, n)
	kept := make([]Result, 0, min(n, limit))
	for i := 0; i < n && len(kept) < limit; i++ {
		if suppressed[i] {
			continue
		}
		kept = append(kept, candidates[i])
		for j := i + 1; j < n; j++ {
			if suppressed[j] || shifted[i].Disjoint(shifted[j]) {
				continue
			}
			if images.CalculateIoU(shifted[i], shifted[j]) > cfg.IoUThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}
