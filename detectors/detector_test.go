package detectors

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armaint/go-detect/images"
	"github.com/armaint/go-detect/postprocess"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, float32(DefaultConfidenceThreshold), cfg.ConfidenceThreshold)
	assert.Equal(t, float32(DefaultIoUThreshold), cfg.IoUThreshold)
	assert.Equal(t, postprocess.DefaultMaxDetections, cfg.MaxDetections)
	assert.Nil(t, cfg.Model)
}

func TestNewDetectorRequiresModel(t *testing.T) {
	_, err := NewDetector(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model data is empty")
}

func TestDetectOptions(t *testing.T) {
	th := thresholds{confidence: 0.25, iou: 0.45}
	for _, opt := range []DetectOption{
		WithConfidenceThreshold(0.6),
		WithIoUThreshold(0.3),
	} {
		opt(&th)
	}

	assert.Equal(t, float32(0.6), th.confidence)
	assert.Equal(t, float32(0.3), th.iou)
}

func TestToDetectionsRoundsAndClips(t *testing.T) {
	results := []postprocess.Result{
		{Box: images.Rect{X1: 10.4, Y1: 20.6, X2: 100.2, Y2: 199.5}, Score: 0.9, Class: 0},
	}

	out := toDetections(results, []string{"valve", "pump"})
	require.Len(t, out, 1)
	assert.Equal(t, image.Rect(10, 21, 100, 200), out[0].Box)
	assert.Equal(t, "valve", out[0].Label)
	assert.Equal(t, 0, out[0].ClassID)
}

func TestToDetectionsDropsCollapsedBoxes(t *testing.T) {
	results := []postprocess.Result{
		{Box: images.Rect{X1: 5, Y1: 5, X2: 5.9, Y2: 50}, Score: 0.9, Class: 0},  // < 1px wide
		{Box: images.Rect{X1: 5, Y1: 5, X2: 50, Y2: 6.2}, Score: 0.8, Class: 0},  // ~1px tall
		{Box: images.Rect{X1: 5, Y1: 5, X2: 50, Y2: 50}, Score: 0.7, Class: 1},   // fine
	}

	out := toDetections(results, nil)
	require.Len(t, out, 1)
	assert.Equal(t, image.Rect(5, 5, 50, 50), out[0].Box)
	assert.Equal(t, "unknown_1", out[0].Label)
}

func TestToDetectionsPreservesOrder(t *testing.T) {
	results := []postprocess.Result{
		{Box: images.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}, Score: 0.9, Class: 0},
		{Box: images.Rect{X1: 20, Y1: 0, X2: 30, Y2: 10}, Score: 0.7, Class: 1},
		{Box: images.Rect{X1: 40, Y1: 0, X2: 50, Y2: 10}, Score: 0.5, Class: 2},
	}

	out := toDetections(results, nil)
	require.Len(t, out, 3)
	assert.Equal(t, float32(0.9), out[0].Confidence)
	assert.Equal(t, float32(0.7), out[1].Confidence)
	assert.Equal(t, float32(0.5), out[2].Confidence)
}
