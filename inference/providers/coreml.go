// Package providers - Apple CoreML execution provider.
package providers

import (
	"runtime"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/pkg/errors"
)

func applyCoreML(opts *ort.SessionOptions) (Backend, error) {
	if runtime.GOOS != "darwin" {
		return Backend{}, errors.Errorf("coreml is unavailable on %s", runtime.GOOS)
	}
	if err := opts.AppendExecutionProviderCoreML(0); err != nil {
		return Backend{}, errors.Wrap(err, "appending coreml execution provider")
	}
	return Backend{Kind: CoreML}, nil
}
