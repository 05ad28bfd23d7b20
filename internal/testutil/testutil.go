// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestKokoroIntegration(t *testing.T) {
//	    lib := testutil.RequireONNXRuntime(t)
//	    modelPath, voicesPath := testutil.RequireKokoroModel(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"testing"

	"github.com/example/go-native-tts/internal/model"
)

// RequirePocketTTS skips the test if the pocket-tts binary is not found in
// PATH or at NATIVETTS_TTS_CLI_PATH. It returns the resolved executable.
func RequirePocketTTS(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("NATIVETTS_TTS_CLI_PATH")
	if exe == "" {
		exe = "pocket-tts"
	}

	resolved, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("pocket-tts binary not available (%q not in PATH); set NATIVETTS_TTS_CLI_PATH to override", exe)
		return ""
	}
	return resolved
}

// RequireONNXRuntime skips the test if no ONNX Runtime shared library can be
// located. It checks (in order): NATIVETTS_ORT_LIB, ORT_LIBRARY_PATH, then
// common system library paths, and returns the library it found.
func RequireONNXRuntime(tb testing.TB) string {
	tb.Helper()

	for _, env := range []string{"NATIVETTS_ORT_LIB", "ORT_LIBRARY_PATH"} {
		if p := os.Getenv(env); p != "" {
			// #nosec G703 -- Integration tests intentionally accept explicit env-provided local library paths.
			if _, err := os.Stat(p); err == nil {
				return p
			}
			tb.Skipf("ONNX Runtime library not found at %s=%q", env, p)
			return ""
		}
	}

	candidates := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"/usr/local/lib/libonnxruntime.dylib",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	tb.Skip("ONNX Runtime shared library not found; set NATIVETTS_ORT_LIB or ORT_LIBRARY_PATH")
	return ""
}

// RequireKokoroModel skips the test unless NATIVETTS_MODEL_DIR holds a
// complete Kokoro install. It returns the model and voices paths.
func RequireKokoroModel(tb testing.TB) (modelPath, voicesPath string) {
	tb.Helper()

	dir := os.Getenv("NATIVETTS_MODEL_DIR")
	if dir == "" {
		tb.Skip("Kokoro model not configured; set NATIVETTS_MODEL_DIR to an installed model directory")
		return "", ""
	}

	m := model.DefaultManifest()
	if err := m.Check(dir); err != nil {
		tb.Skipf("Kokoro model in %q not usable: %v", dir, err)
		return "", ""
	}
	return m.Paths(dir)
}
