package postprocess

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armaint/go-detect/images"
)

func TestApplySuppressesSameClassOverlap(t *testing.T) {
	// IoU of these two boxes is 75/125 = 0.6, above the 0.45 threshold:
	// only the higher-confidence one survives.
	candidates := []Result{
		{Box: images.Rect{X1: 0, Y1: 2.5, X2: 10, Y2: 12.5}, Score: 0.6, Class: 3},
		{Box: images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}, Score: 0.8, Class: 3},
	}

	kept := Apply(candidates, Config{IoUThreshold: 0.45})
	require.Len(t, kept, 1)
	assert.Equal(t, float32(0.8), kept[0].Score)
}

func TestApplyClassIsolation(t *testing.T) {
	// Identical boxes of different classes never suppress each other;
	// identical boxes of the same class collapse to one.
	box := images.Rect{X1: 100, Y1: 100, X2: 200, Y2: 200}
	candidates := []Result{
		{Box: box, Score: 0.9, Class: 1},
		{Box: box, Score: 0.85, Class: 2},
		{Box: box, Score: 0.8, Class: 1},
	}

	kept := Apply(candidates, Config{IoUThreshold: 0.45})
	require.Len(t, kept, 2)
	assert.Equal(t, 1, kept[0].Class)
	assert.Equal(t, float32(0.9), kept[0].Score, "same-class duplicate keeps the higher confidence")
	assert.Equal(t, 2, kept[1].Class)
}

func TestApplyKeepsConfidenceOrder(t *testing.T) {
	candidates := []Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}, Score: 0.5, Class: 0},
		{Box: images.Rect{X1: 100, Y1: 0, X2: 110, Y2: 10}, Score: 0.9, Class: 0},
		{Box: images.Rect{X1: 200, Y1: 0, X2: 210, Y2: 10}, Score: 0.7, Class: 0},
	}

	kept := Apply(candidates, Config{IoUThreshold: 0.45})
	require.Len(t, kept, 3)
	assert.Equal(t, float32(0.9), kept[0].Score)
	assert.Equal(t, float32(0.7), kept[1].Score)
	assert.Equal(t, float32(0.5), kept[2].Score)
}

func TestApplyIdempotent(t *testing.T) {
	// A grid of boxes plus jittered near-duplicates, so the first pass
	// has real suppression work to do.
	var candidates []Result
	for i := 0; i < 40; i++ {
		x := float32((i % 8) * 24)
		y := float32((i / 8) * 20)
		candidates = append(candidates, Result{
			Box:   images.Rect{X1: x, Y1: y, X2: x + 15, Y2: y + 12},
			Score: 0.3 + float32(i%10)*0.07,
			Class: i % 3,
		})
		candidates = append(candidates, Result{
			Box:   images.Rect{X1: x + 2, Y1: y + 2, X2: x + 17, Y2: y + 14},
			Score: 0.25 + float32(i%10)*0.07,
			Class: i % 3,
		})
	}

	once := Apply(candidates, Config{IoUThreshold: 0.45})
	assert.Less(t, len(once), len(candidates), "first pass suppresses the near-duplicates")
	again := Apply(append([]Result(nil), once...), Config{IoUThreshold: 0.45})
	assert.Equal(t, once, again, "NMS on its own output must not suppress further")
}

func TestApplyMaxDetections(t *testing.T) {
	// 500 mutually disjoint candidates: exactly the 300 highest
	// confidences come back.
	var candidates []Result
	for i := 0; i < 500; i++ {
		x := float32(i * 20)
		candidates = append(candidates, Result{
			Box:   images.Rect{X1: x, Y1: 0, X2: x + 10, Y2: 10},
			Score: 1.0 - float32(i)/1000,
			Class: 0,
		})
	}

	kept := Apply(candidates, Config{IoUThreshold: 0.45, MaxDetections: 300})
	require.Len(t, kept, 300)
	assert.Equal(t, float32(1.0), kept[0].Score)
	assert.InDelta(t, 1.0-299.0/1000, kept[299].Score, 1e-6, "the 300 kept are the highest-confidence ones")
}

func TestApplyTieBreakIsStable(t *testing.T) {
	// Equal confidences keep first-encountered order.
	var candidates []Result
	for i := 0; i < 4; i++ {
		x := float32(i * 100)
		candidates = append(candidates, Result{
			Box:   images.Rect{X1: x, Y1: 0, X2: x + 10, Y2: 10},
			Score: 0.5,
			Class: i,
		})
	}

	kept := Apply(candidates, Config{IoUThreshold: 0.45})
	require.Len(t, kept, 4)
	for i, r := range kept {
		assert.Equal(t, i, r.Class, fmt.Sprintf("position %d", i))
	}
}

func TestApplyEmptyInput(t *testing.T) {
	assert.Nil(t, Apply(nil, Config{IoUThreshold: 0.45}))
	assert.Nil(t, Apply([]Result{}, Config{IoUThreshold: 0.45}))
}
