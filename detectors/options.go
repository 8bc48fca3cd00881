package detectors

// thresholds are the per-call decode settings.
type thresholds struct {
	confidence float32
	iou        float32
}

// DetectOption overrides a decode threshold for a single Detect call.
type DetectOption func(*thresholds)

// WithConfidenceThreshold overrides the confidence threshold for one
// call.
func WithConfidenceThreshold(t float32) DetectOption {
	return func(s *thresholds) { s.confidence = t }
}

// WithIoUThreshold overrides the NMS IoU threshold for one call.
func WithIoUThreshold(t float32) DetectOption {
	return func(s *thresholds) { s.iou = t }
}
