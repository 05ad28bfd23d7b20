//go:build !windows

package onnx

import (
	"context"
	"testing"

	"github.com/example/go-native-tts/internal/audio"
	"github.com/example/go-native-tts/internal/config"
	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/testutil"
)

func TestKokoroIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	lib := testutil.RequireONNXRuntime(t)
	modelPath, voicesPath := testutil.RequireKokoroModel(t)

	eng, err := Loader{Runtime: config.RuntimeConfig{ORTLibraryPath: lib, ORTAPIVersion: 23}}.
		Load(context.Background(), modelPath, voicesPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer eng.Close()

	samples, err := eng.Synthesize(context.Background(), "Hello from the native engine.", engine.ResolveVoice(engine.AfSky, 1))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	data, err := audio.EncodeWAV(samples)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	testutil.AssertValidWAV(t, data)
	testutil.AssertWAVDurationApprox(t, data, 0.5, 10)
}
