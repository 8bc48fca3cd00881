package detectors

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/armaint/go-detect/inference"
	"github.com/armaint/go-detect/inference/providers"
	"github.com/armaint/go-detect/postprocess"
)

// Detection is one detected object in original-frame pixel coordinates.
// Detections are immutable once produced and owned by the caller.
type Detection struct {
	Box        image.Rectangle
	Confidence float32
	ClassID    int
	Label      string
}

// Detector runs the full per-frame pipeline: letterbox preprocessing,
// backend inference, and decoding into de-duplicated labeled boxes.
//
// A Detector is meant to be driven from a single processing goroutine.
// It reuses its input and output buffers in place to avoid per-frame
// allocation and takes no internal locks, so it must not be called
// concurrently. It performs no queuing either: if the camera outpaces
// detection, the caller should drop frames rather than buffer them.
type Detector struct {
	cfg     Config
	session *inference.Session
	pre     *inference.Preprocessor
	logger  *zap.Logger
}

// NewDetector loads the model, selects a compute backend, and allocates
// the per-frame buffers. Construction is all-or-nothing: on any fatal
// error (unreadable model, no usable backend) no detector exists, rather
// than one in a half-initialized state.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.IoUThreshold <= 0 {
		cfg.IoUThreshold = DefaultIoUThreshold
	}
	if cfg.MaxDetections <= 0 {
		cfg.MaxDetections = postprocess.DefaultMaxDetections
	}
	if len(cfg.Model) == 0 {
		return nil, errors.New("model data is empty")
	}

	mc, err := inference.ConfigFromModel(cfg.Model)
	if err != nil {
		return nil, errors.Wrap(err, "loading model")
	}

	if len(cfg.ClassNames) > 0 && len(cfg.ClassNames) != mc.NumClasses {
		cfg.Logger.Warn("class name count does not match model",
			zap.Int("names", len(cfg.ClassNames)),
			zap.Int("model_classes", mc.NumClasses))
	}

	session, err := inference.NewSession(cfg.Model, mc, providers.Preference{
		NeuralAccelerator: cfg.NeuralAccelerator,
		GPU:               cfg.GPU,
	}, cfg.Logger)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		cfg:     cfg,
		session: session,
		pre:     inference.NewPreprocessor(mc, cfg.AllowUpscale),
		logger:  cfg.Logger,
	}
	session.Warmup()

	d.logger.Info("detector ready",
		zap.String("backend", string(session.Backend().Kind)),
		zap.Int("input_width", mc.InputWidth),
		zap.Int("input_height", mc.InputHeight),
		zap.Int("classes", mc.NumClasses),
		zap.Bool("quantized", mc.Quantized))
	return d, nil
}

// Backend reports which compute backend the detector ended up on.
func (d *Detector) Backend() providers.Backend {
	return d.session.Backend()
}

// Detect runs the pipeline on one frame and returns the surviving
// detections ordered by descending confidence. Per-frame failures yield
// an empty result and are logged; a dropped frame is preferable to
// killing the capture loop, and the detector stays usable for the next
// frame.
func (d *Detector) Detect(img image.Image, opts ...DetectOption) []Detection {
	out, err := d.detect(img, opts)
	if err != nil {
		d.logger.Warn("frame dropped", zap.Error(err))
		return nil
	}
	return out
}

func (d *Detector) detect(img image.Image, opts []DetectOption) (out []Detection, err error) {
	// A malformed output buffer must not crash the capture loop.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic during detection: %v", r)
		}
	}()

	th := thresholds{confidence: d.cfg.ConfidenceThreshold, iou: d.cfg.IoUThreshold}
	for _, opt := range opts {
		opt(&th)
	}

	lb, err := d.pre.Fill(img, d.session.Input())
	if err != nil {
		return nil, errors.Wrap(err, "preprocessing frame")
	}
	if err := d.session.Run(); err != nil {
		return nil, err
	}

	candidates, err := decodeOutput(d.session.Output(), d.session.Config(), lb, th.confidence)
	if err != nil {
		return nil, err
	}
	kept := postprocess.Apply(candidates, postprocess.Config{
		IoUThreshold:  th.iou,
		MaxDetections: d.cfg.MaxDetections,
	})
	return toDetections(kept, d.cfg.ClassNames), nil
}

// Close releases the backend session and scratch buffers. Call it
// between frames; there is no mid-frame cancellation.
func (d *Detector) Close() error {
	return d.session.Close()
}

// toDetections rounds the surviving boxes to integer pixels, drops boxes
// that collapsed to a pixel or less, and attaches labels. Acceptance
// order (confidence-descending) is preserved.
func toDetections(results []postprocess.Result, names []string) []Detection {
	out := make([]Detection, 0, len(results))
	for _, r := range results {
		x1 := int(math32.Round(r.Box.X1))
		y1 := int(math32.Round(r.Box.Y1))
		x2 := int(math32.Round(r.Box.X2))
		y2 := int(math32.Round(r.Box.Y2))
		if x2-x1 <= 1 || y2-y1 <= 1 {
			continue
		}
		out = append(out, Detection{
			Box:        image.Rect(x1, y1, x2, y2),
			Confidence: r.Score,
			ClassID:    r.Class,
			Label:      inference.ClassName(names, r.Class),
		})
	}
	return out
}
