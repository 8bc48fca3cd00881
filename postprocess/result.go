// Package postprocess - Non-Maximum Suppression over detection
// candidates.
package postprocess

import "github.com/armaint/go-detect/images"

// Result is a single detection candidate in original-frame pixel
// coordinates.
type Result struct {
	// The bounding box of the candidate.
	Box images.Rect
	// The confidence score of the candidate.
	Score float32
	// The predicted class index of the candidate.
	Class int
}
