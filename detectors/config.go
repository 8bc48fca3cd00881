// Package detectors - The object detector facade over the inference
// pipeline: preprocessing, backend inference, and decoding into labeled
// bounding boxes.
package detectors

import (
	"go.uber.org/zap"

	"github.com/armaint/go-detect/postprocess"
)

// Defaults applied by DefaultConfig.
const (
	// DefaultConfidenceThreshold discards candidates scored below it
	// before any further work.
	DefaultConfidenceThreshold = 0.25
	// DefaultIoUThreshold is the NMS overlap threshold.
	DefaultIoUThreshold = 0.45
)

// Config configures a Detector.
type Config struct {
	// Model holds the raw ONNX model bytes.
	Model []byte

	// ClassNames maps class IDs to display labels, in file order. A
	// length that disagrees with the model's declared class count is
	// logged as a warning, not an error; model and label file may
	// legitimately diverge during development.
	ClassNames []string

	// NeuralAccelerator and GPU select which accelerated backends to
	// attempt before the CPU fallback.
	NeuralAccelerator bool
	GPU               bool

	// ConfidenceThreshold and IoUThreshold are the decode defaults,
	// overridable per call with DetectOptions.
	ConfidenceThreshold float32
	IoUThreshold        float32

	// MaxDetections caps the boxes returned per frame.
	MaxDetections int

	// AllowUpscale lets the preprocessor enlarge frames smaller than the
	// model input instead of padding them.
	AllowUpscale bool

	Logger *zap.Logger
}

// DefaultConfig returns a configuration with production thresholds; the
// caller still has to supply the model bytes.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		IoUThreshold:        DefaultIoUThreshold,
		MaxDetections:       postprocess.DefaultMaxDetections,
	}
}
