package tts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/model"
	"github.com/example/go-native-tts/internal/plugin"
)

// stubEngine returns samplesPerCall samples for every sentence.
type stubEngine struct {
	samplesPerCall int
	failOn         string
	failErr        error
	onCall         func(n int)

	mu     sync.Mutex
	texts  []string
	voices []engine.Voice
	closed bool
}

func (e *stubEngine) Synthesize(_ context.Context, text string, voice engine.Voice) ([]float32, error) {
	e.mu.Lock()
	e.texts = append(e.texts, text)
	e.voices = append(e.voices, voice)
	n := len(e.texts)
	e.mu.Unlock()

	if e.onCall != nil {
		e.onCall(n)
	}
	if e.failOn != "" && text == e.failOn {
		return nil, e.failErr
	}

	out := make([]float32, e.samplesPerCall)
	for i := range out {
		out[i] = float32(i%50)/100 - 0.25
	}
	return out, nil
}

func (e *stubEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *stubEngine) calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.texts...)
}

func (e *stubEngine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// stubLoader hands out eng, or fails with err.
type stubLoader struct {
	eng *stubEngine
	err error

	mu    sync.Mutex
	loads int
}

func (l *stubLoader) Load(context.Context, string, string) (engine.Engine, error) {
	l.mu.Lock()
	l.loads++
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return l.eng, nil
}

func (l *stubLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads
}

const (
	testModelMin  = 64
	testVoicesMin = 16
)

func testManifest() model.Manifest {
	m := model.DefaultManifest()
	m.Model.MinBytes = testModelMin
	m.Voices.MinBytes = testVoicesMin
	return m
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestInstance(t *testing.T, loader engine.Loader) *Instance {
	t.Helper()
	return NewInstance(filepath.Join(t.TempDir(), "tts"), Options{
		Loader:   loader,
		Manifest: testManifest(),
	}, discardLogger())
}

// writeAssets puts model and voices files of the given sizes in place.
func writeAssets(t *testing.T, in *Instance, modelSize, voicesSize int) {
	t.Helper()
	modelPath, voicesPath := in.manifest.Paths(in.ModelDir())
	if err := os.MkdirAll(in.ModelDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(modelPath, make([]byte, modelSize), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(voicesPath, make([]byte, voicesSize), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newInstalledInstance(t *testing.T, eng *stubEngine) (*Instance, *stubLoader) {
	t.Helper()
	loader := &stubLoader{eng: eng}
	in := newTestInstance(t, loader)
	writeAssets(t, in, testModelMin, testVoicesMin)
	return in, loader
}

// requireCode fails unless err carries the plugin error code want.
func requireCode(t *testing.T, err error, want string) *plugin.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	var pe *plugin.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *plugin.Error with code %s, got %T: %v", want, err, err)
	}
	if pe.Code != want {
		t.Fatalf("code = %s (%q), want %s", pe.Code, pe.Message, want)
	}
	return pe
}
