package config

import (
	"fmt"
	"strings"
)

const (
	BackendONNX = "onnx"
	BackendCLI  = "cli"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendONNX
	}
	switch backend {
	case BackendONNX, BackendCLI:
		return backend, nil
	case "kokoro", "native-onnx":
		return BackendONNX, nil
	case "pocket-tts":
		return BackendCLI, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s)",
			raw,
			BackendONNX,
			BackendCLI,
		)
	}
}
