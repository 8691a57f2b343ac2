package pipeline

import (
	"runtime"

	"autosub/internal/services"
)

// goos is swapped in tests.
var goos = runtime.GOOS

// ResolveDevice maps the configured encode device to a concrete one. "auto"
// picks videotoolbox on macOS, cuda when CUDA is enabled, and cpu otherwise.
func ResolveDevice(requested string, cudaEnabled bool) (string, error) {
	switch requested {
	case "", "auto":
		if goos == "darwin" {
			return "videotoolbox", nil
		}
		if cudaEnabled {
			return "cuda", nil
		}
		return "cpu", nil
	case "cpu", "cuda", "videotoolbox":
		return requested, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "resolve device",
			"unknown encode device "+requested, nil)
	}
}
