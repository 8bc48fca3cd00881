package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armaint/go-detect/images"
	"github.com/armaint/go-detect/inference"
)

// testModel is a small transposed-output model: 5 classes, 8 prediction
// slots, 640x640 input.
func testModel() inference.ModelConfig {
	return inference.ModelConfig{
		InputWidth:     640,
		InputHeight:    640,
		Layout:         inference.LayoutNCHW,
		NumClasses:     5,
		NumPredictions: 8,
	}
}

// setCandidate writes one prediction slot into the classes-major raw
// buffer: box parameters at strides 0..3, class scores after.
func setCandidate(raw []float32, cfg inference.ModelConfig, slot int, cx, cy, w, h float32, class int, score float32) {
	n := cfg.NumPredictions
	raw[slot] = cx
	raw[n+slot] = cy
	raw[2*n+slot] = w
	raw[3*n+slot] = h
	raw[(4+class)*n+slot] = score
}

func fullHDLetterbox(t *testing.T) images.Letterbox {
	t.Helper()
	lb, err := images.FitLetterbox(1920, 1080, 640, 640, false)
	require.NoError(t, err)
	return lb
}

func TestDecodeOutputRescalesToOriginalFrame(t *testing.T) {
	cfg := testModel()
	raw := make([]float32, (4+cfg.NumClasses)*cfg.NumPredictions)
	setCandidate(raw, cfg, 0, 0.5, 0.5, 0.2, 0.2, 2, 0.9)

	results, err := decodeOutput(raw, cfg, fullHDLetterbox(t), 0.25)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, 2, r.Class)
	assert.InDelta(t, 0.9, r.Score, 1e-6)

	// A centered box stays centered at (960, 540) after undoing the
	// letterbox; 0.2 of the 640 model space spans 384 original pixels.
	assert.InDelta(t, 960, (r.Box.X1+r.Box.X2)/2, 1)
	assert.InDelta(t, 540, (r.Box.Y1+r.Box.Y2)/2, 1)
	assert.InDelta(t, 384, r.Box.X2-r.Box.X1, 1)
	assert.InDelta(t, 384, r.Box.Y2-r.Box.Y1, 1)
}

func TestDecodeOutputConfidenceFilter(t *testing.T) {
	cfg := testModel()
	raw := make([]float32, (4+cfg.NumClasses)*cfg.NumPredictions)
	setCandidate(raw, cfg, 0, 0.5, 0.5, 0.1, 0.1, 0, 0.3)
	setCandidate(raw, cfg, 1, 0.3, 0.3, 0.1, 0.1, 1, 0.5)
	setCandidate(raw, cfg, 2, 0.7, 0.7, 0.1, 0.1, 2, 0.7)
	setCandidate(raw, cfg, 3, 0.2, 0.8, 0.1, 0.1, 3, 0.9)

	lb := fullHDLetterbox(t)
	expected := []int{4, 3, 2, 1, 0}
	for i, threshold := range []float32{0.2, 0.4, 0.6, 0.8, 0.95} {
		results, err := decodeOutput(raw, cfg, lb, threshold)
		require.NoError(t, err)
		assert.Len(t, results, expected[i], "threshold %.2f", threshold)
	}
}

func TestDecodeOutputPicksBestClass(t *testing.T) {
	cfg := testModel()
	raw := make([]float32, (4+cfg.NumClasses)*cfg.NumPredictions)
	setCandidate(raw, cfg, 0, 0.5, 0.5, 0.1, 0.1, 1, 0.4)
	// A stronger score for another class in the same slot wins.
	raw[(4+4)*cfg.NumPredictions] = 0.85

	results, err := decodeOutput(raw, cfg, fullHDLetterbox(t), 0.25)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 4, results[0].Class)
	assert.InDelta(t, 0.85, results[0].Score, 1e-6)
}

func TestDecodeOutputBlankFrame(t *testing.T) {
	cfg := testModel()
	raw := make([]float32, (4+cfg.NumClasses)*cfg.NumPredictions)

	results, err := decodeOutput(raw, cfg, fullHDLetterbox(t), 0.25)
	require.NoError(t, err)
	assert.Empty(t, results, "an all-zero output yields no detections")
}

func TestDecodeOutputTruncatedBuffer(t *testing.T) {
	cfg := testModel()
	raw := make([]float32, 10)

	_, err := decodeOutput(raw, cfg, fullHDLetterbox(t), 0.25)
	assert.Error(t, err, "a short buffer must raise, not read out of bounds")
}
