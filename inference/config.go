package inference

import (
	ort "github.com/yalue/onnxruntime_go"

	"github.com/pkg/errors"
)

// Layout is the channel layout of the model's input tensor.
type Layout string

const (
	// LayoutNCHW is the channels-first layout [1, 3, H, W].
	LayoutNCHW Layout = "nchw"
	// LayoutNHWC is the channels-last layout [1, H, W, 3].
	LayoutNHWC Layout = "nhwc"
)

// minModelSize rejects obviously truncated model files before handing
// them to the native runtime.
const minModelSize = 64

// ModelConfig describes the loaded network: its fixed input resolution,
// quantization mode, and output geometry. It is derived once from the
// model's declared tensor shapes and immutable afterward.
type ModelConfig struct {
	InputWidth  int
	InputHeight int
	Layout      Layout

	// Quantized is true for models with an 8-bit input tensor; pixel
	// bytes are then copied directly instead of normalized to floats.
	Quantized bool

	// The output tensor is [1, 4+NumClasses, NumPredictions]: box
	// parameters followed by per-class scores, predictions-minor.
	NumClasses     int
	NumPredictions int

	InputName  string
	OutputName string
}

// ConfigFromModel derives the model configuration from raw ONNX model
// bytes. Truncated data, unreadable shape metadata, and unsupported
// tensor layouts are all construction-time failures.
func ConfigFromModel(model []byte) (ModelConfig, error) {
	if len(model) < minModelSize {
		return ModelConfig{}, errors.Errorf("model data too small (%d bytes)", len(model))
	}
	if err := initRuntime(); err != nil {
		return ModelConfig{}, err
	}

	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(model)
	if err != nil {
		return ModelConfig{}, errors.Wrap(err, "reading model tensor info")
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return ModelConfig{}, errors.Errorf(
			"expected a single-input single-output model, got %d inputs and %d outputs",
			len(inputs), len(outputs))
	}

	cfg := ModelConfig{
		InputName:  inputs[0].Name,
		OutputName: outputs[0].Name,
		Quantized:  inputs[0].DataType == ort.TensorElementDataTypeUint8,
	}

	in := inputs[0].Dimensions
	if len(in) != 4 {
		return ModelConfig{}, errors.Errorf("unsupported input rank %d, want 4", len(in))
	}
	switch {
	case in[1] == 3:
		cfg.Layout = LayoutNCHW
		cfg.InputHeight = int(in[2])
		cfg.InputWidth = int(in[3])
	case in[3] == 3:
		cfg.Layout = LayoutNHWC
		cfg.InputHeight = int(in[1])
		cfg.InputWidth = int(in[2])
	default:
		return ModelConfig{}, errors.Errorf("input shape %v has no 3-channel axis", in)
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return ModelConfig{}, errors.Errorf("dynamic input shape %v is not supported", in)
	}

	out := outputs[0].Dimensions
	if len(out) != 3 || out[1] < 5 || out[2] <= 0 {
		return ModelConfig{}, errors.Errorf("unsupported output shape %v, want [1, 4+classes, predictions]", out)
	}
	if out[1] > out[2] {
		// Transposed relative to what the decoder reads; bail out rather
		// than silently misinterpreting scores as coordinates.
		return ModelConfig{}, errors.Errorf("output shape %v looks prediction-major, want class-major", out)
	}
	cfg.NumClasses = int(out[1]) - 4
	cfg.NumPredictions = int(out[2])

	return cfg, nil
}

// inputShape returns the ONNX input tensor shape for the configured
// layout.
func (c ModelConfig) inputShape() ort.Shape {
	if c.Layout == LayoutNHWC {
		return ort.NewShape(1, int64(c.InputHeight), int64(c.InputWidth), 3)
	}
	return ort.NewShape(1, 3, int64(c.InputHeight), int64(c.InputWidth))
}

// outputShape returns the ONNX output tensor shape.
func (c ModelConfig) outputShape() ort.Shape {
	return ort.NewShape(1, int64(4+c.NumClasses), int64(c.NumPredictions))
}
