package detectors

import (
	"github.com/pkg/errors"

	"github.com/armaint/go-detect/images"
	"github.com/armaint/go-detect/inference"
	"github.com/armaint/go-detect/postprocess"
)

// decodeOutput scans the transposed [1, 4+C, N] output buffer and
// returns the candidates above the confidence threshold, with boxes
// mapped back to original-frame pixels. Scores within one prediction
// slot are laid out class-major, stride N apart; the best class wins.
// Scores are independent sigmoid outputs, so a plain max scan is enough.
func decodeOutput(raw []float32, cfg inference.ModelConfig, lb images.Letterbox, confThreshold float32) ([]postprocess.Result, error) {
	n := cfg.NumPredictions
	c := cfg.NumClasses
	if need := (4 + c) * n; len(raw) < need {
		return nil, errors.Errorf("output buffer holds %d values, model declares %d", len(raw), need)
	}

	inW := float32(cfg.InputWidth)
	inH := float32(cfg.InputHeight)

	var results []postprocess.Result
	for i := 0; i < n; i++ {
		best := -1
		var bestScore float32
		for cl := 0; cl < c; cl++ {
			if s := raw[(4+cl)*n+i]; s > bestScore {
				bestScore = s
				best = cl
			}
		}
		if best < 0 || bestScore < confThreshold {
			continue
		}

		// Center-form box normalized to model input space.
		cx := raw[i]
		cy := raw[n+i]
		w := raw[2*n+i]
		h := raw[3*n+i]
		box := images.Rect{
			X1: (cx - w/2) * inW,
			Y1: (cy - h/2) * inH,
			X2: (cx + w/2) * inW,
			Y2: (cy + h/2) * inH,
		}

		results = append(results, postprocess.Result{
			Box:   lb.ToSource(box),
			Score: bestScore,
			Class: best,
		})
	}
	return results, nil
}
