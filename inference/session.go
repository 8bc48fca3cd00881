package inference

import (
	ort "github.com/yalue/onnxruntime_go"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/armaint/go-detect/inference/providers"
)

// Session owns the loaded network and its pre-allocated input and output
// tensors. Buffers are sized once from the model's declared shapes and
// reused for every frame; a Session must not be run concurrently.
type Session struct {
	cfg     ModelConfig
	backend providers.Backend
	session *ort.AdvancedSession
	inputF  *ort.Tensor[float32]
	inputU  *ort.Tensor[uint8]
	output  *ort.Tensor[float32]
	logger  *zap.Logger
}

// NewSession loads the model and selects a compute backend, attempting
// the preferred accelerators in priority order and validating each with
// a smoke inference before committing. If no backend works, the combined
// attempt errors are returned and nothing is left half-initialized.
func NewSession(model []byte, cfg ModelConfig, pref providers.Preference, logger *zap.Logger) (*Session, error) {
	if err := initRuntime(); err != nil {
		return nil, err
	}

	var attempts error
	for _, kind := range providers.Candidates(pref) {
		s, err := open(model, cfg, kind, logger)
		if err == nil && kind != providers.CPU {
			// Some devices report accelerator support but fail on first
			// use; a trivial run catches them before real frames do.
			if runErr := s.session.Run(); runErr != nil {
				_ = s.Close()
				err = errors.Wrap(runErr, "smoke inference")
			}
		}
		if err != nil {
			logger.Warn("compute backend unavailable",
				zap.String("backend", string(kind)),
				zap.Error(err))
			attempts = multierr.Append(attempts, errors.Wrapf(err, "%s", kind))
			continue
		}
		logger.Info("compute backend selected",
			zap.String("backend", string(s.backend.Kind)),
			zap.Int("threads", s.backend.Threads))
		return s, nil
	}
	return nil, errors.Wrap(attempts, "no usable compute backend")
}

// open builds a complete session against one backend kind, cleaning up
// every native resource on failure.
func open(model []byte, cfg ModelConfig, kind providers.Kind, logger *zap.Logger) (*Session, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "creating session options")
	}
	defer opts.Destroy()

	backend, err := providers.Apply(opts, kind)
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, backend: backend, logger: logger}

	var input ort.ArbitraryTensor
	if cfg.Quantized {
		s.inputU, err = ort.NewEmptyTensor[uint8](cfg.inputShape())
		input = s.inputU
	} else {
		s.inputF, err = ort.NewEmptyTensor[float32](cfg.inputShape())
		input = s.inputF
	}
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}

	s.output, err = ort.NewEmptyTensor[float32](cfg.outputShape())
	if err != nil {
		_ = input.Destroy()
		return nil, errors.Wrap(err, "creating output tensor")
	}

	s.session, err = ort.NewAdvancedSessionWithONNXData(
		model,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{s.output},
		opts,
	)
	if err != nil {
		_ = input.Destroy()
		_ = s.output.Destroy()
		return nil, errors.Wrap(err, "creating onnxruntime session")
	}
	return s, nil
}

// Config returns the model configuration.
func (s *Session) Config() ModelConfig { return s.cfg }

// Backend returns the selected backend state.
func (s *Session) Backend() providers.Backend { return s.backend }

// Input exposes the pre-allocated input buffer for the preprocessor.
func (s *Session) Input() InputBuffer {
	if s.cfg.Quantized {
		return InputBuffer{Bytes: s.inputU.GetData()}
	}
	return InputBuffer{Floats: s.inputF.GetData()}
}

// Output exposes the raw output buffer, valid until the next Run.
func (s *Session) Output() []float32 {
	return s.output.GetData()
}

// Run pushes the filled input buffer through the model. No allocation
// happens per call.
func (s *Session) Run() error {
	return errors.Wrap(s.session.Run(), "running inference")
}

// Warmup runs one inference on an all-zero input to absorb the lazy
// initialization cost some backends pay on first use. Failure only
// affects first-call latency and is logged, not returned.
func (s *Session) Warmup() {
	in := s.Input()
	for i := range in.Floats {
		in.Floats[i] = 0
	}
	for i := range in.Bytes {
		in.Bytes[i] = 0
	}
	if err := s.Run(); err != nil {
		s.logger.Warn("warmup inference failed", zap.Error(err))
	}
}

// Close releases the native session and tensors. The session must not be
// used afterward.
func (s *Session) Close() error {
	var err error
	if s.inputF != nil {
		err = multierr.Append(err, s.inputF.Destroy())
		s.inputF = nil
	}
	if s.inputU != nil {
		err = multierr.Append(err, s.inputU.Destroy())
		s.inputU = nil
	}
	if s.output != nil {
		err = multierr.Append(err, s.output.Destroy())
		s.output = nil
	}
	if s.session != nil {
		err = multierr.Append(err, s.session.Destroy())
		s.session = nil
	}
	return errors.Wrap(err, "closing session")
}
