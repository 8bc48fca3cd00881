// Package inference - Model loading, preprocessing, and inference
// sessions for the detection pipeline.
package inference

import (
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/pkg/errors"
)

// SharedLibraryEnv overrides the ONNX Runtime shared library location
// when set.
const SharedLibraryEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

var (
	libraryPath string
	runtimeOnce sync.Once
	runtimeErr  error
)

// SetSharedLibrary overrides the ONNX Runtime shared library path. It
// must be called before the first model is loaded; later calls have no
// effect.
func SetSharedLibrary(path string) {
	libraryPath = path
}

// initRuntime points ONNX Runtime at the native library and initializes
// its environment exactly once for the process.
func initRuntime() error {
	runtimeOnce.Do(func() {
		path := libraryPath
		if path == "" {
			path = os.Getenv(SharedLibraryEnv)
		}
		if path == "" {
			path = defaultSharedLibPath()
		}
		if _, err := os.Stat(path); err != nil {
			runtimeErr = errors.Wrapf(err, "onnxruntime shared library not found at %s", path)
			return
		}
		ort.SetSharedLibraryPath(path)
		if err := ort.InitializeEnvironment(); err != nil {
			runtimeErr = errors.Wrap(err, "initializing onnxruntime environment")
		}
	})
	return runtimeErr
}

// defaultSharedLibPath returns the conventional library location for the
// current platform.
func defaultSharedLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "third_party/onnxruntime.dll"
	case "darwin":
		return "third_party/libonnxruntime.dylib"
	default:
		if runtime.GOARCH == "arm64" {
			return "third_party/onnxruntime_arm64.so"
		}
		return "third_party/onnxruntime.so"
	}
}
