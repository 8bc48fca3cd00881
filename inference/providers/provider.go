// Package providers - Execution provider selection for detector sessions.
//
// A session is attempted against the candidate backends in priority
// order: dedicated neural accelerator first, then general-purpose GPU
// compute, then the CPU fallback that is always available. The caller
// validates each candidate by actually constructing and running the
// session; this package only knows how to configure session options for
// each backend kind.
package providers

import (
	ort "github.com/yalue/onnxruntime_go"

	"github.com/pkg/errors"
)

// Kind identifies an execution provider backend.
type Kind string

const (
	// CoreML runs on the Apple Neural Engine where available.
	CoreML Kind = "coreml"
	// CUDA runs on general-purpose GPU compute.
	CUDA Kind = "cuda"
	// CPU is the fallback backend, always attempted last.
	CPU Kind = "cpu"
)

// Preference selects which accelerated backends to attempt before the
// CPU fallback.
type Preference struct {
	// NeuralAccelerator enables the dedicated neural accelerator (CoreML).
	NeuralAccelerator bool
	// GPU enables general-purpose GPU compute (CUDA).
	GPU bool
}

// Backend records the execution provider a session ended up on. It is
// written once during initialization and read-only afterward.
type Backend struct {
	Kind Kind
	// Threads is the intra-op thread count, set for the CPU backend only.
	Threads int
}

// Candidates returns the backends to attempt, in priority order. CPU is
// always last and never omitted, so a detector either gets a usable
// compute path or fails construction outright.
func Candidates(pref Preference) []Kind {
	kinds := make([]Kind, 0, 3)
	if pref.NeuralAccelerator {
		kinds = append(kinds, CoreML)
	}
	if pref.GPU {
		kinds = append(kinds, CUDA)
	}
	return append(kinds, CPU)
}

// Apply configures opts for the given backend kind and returns the
// resulting backend state.
func Apply(opts *ort.SessionOptions, kind Kind) (Backend, error) {
	switch kind {
	case CoreML:
		return applyCoreML(opts)
	case CUDA:
		return applyCUDA(opts)
	case CPU:
		return applyCPU(opts)
	}
	return Backend{}, errors.Errorf("unknown backend kind %q", kind)
}
