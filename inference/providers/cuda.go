// Package providers - NVIDIA CUDA execution provider.
package providers

import (
	ort "github.com/yalue/onnxruntime_go"

	"github.com/pkg/errors"
)

// cudaOptions are the provider settings used for every CUDA session.
// See:
// https://onnxruntime.ai/docs/execution-providers/CUDA-ExecutionProvider.html#configuration-options
var cudaOptions = map[string]string{
	"device_id":                 "0",
	"arena_extend_strategy":     "kSameAsRequested",
	"cudnn_conv_algo_search":    "HEURISTIC",
	"do_copy_in_default_stream": "1",
}

func applyCUDA(opts *ort.SessionOptions) (Backend, error) {
	cuda, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return Backend{}, errors.Wrap(err, "creating cuda provider options")
	}
	defer cuda.Destroy()

	if err := cuda.Update(cudaOptions); err != nil {
		return Backend{}, errors.Wrap(err, "updating cuda provider options")
	}
	if err := opts.AppendExecutionProviderCUDA(cuda); err != nil {
		return Backend{}, errors.Wrap(err, "appending cuda execution provider")
	}
	return Backend{Kind: CUDA}, nil
}
