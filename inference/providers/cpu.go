// Package providers - CPU fallback execution provider.
package providers

import (
	"runtime"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/pkg/errors"
)

// CPUThreads returns the intra-op thread count for the CPU backend:
// single-threaded on small core counts, otherwise all cores minus two so
// the camera and render loops keep breathing room.
func CPUThreads(cores int) int {
	switch {
	case cores <= 2:
		return 1
	case cores <= 4:
		return 2
	}
	if n := cores - 2; n > 1 {
		return n
	}
	return 1
}

func applyCPU(opts *ort.SessionOptions) (Backend, error) {
	threads := CPUThreads(runtime.NumCPU())
	if err := opts.SetIntraOpNumThreads(threads); err != nil {
		return Backend{}, errors.Wrap(err, "setting intra-op threads")
	}
	if err := opts.SetInterOpNumThreads(1); err != nil {
		return Backend{}, errors.Wrap(err, "setting inter-op threads")
	}
	if err := opts.SetExecutionMode(ort.ExecutionModeSequential); err != nil {
		return Backend{}, errors.Wrap(err, "setting execution mode")
	}
	// Extended optimization permits reduced-precision rewrites, trading a
	// little accuracy for CPU throughput.
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		return Backend{}, errors.Wrap(err, "setting graph optimization level")
	}
	return Backend{Kind: CPU, Threads: threads}, nil
}
