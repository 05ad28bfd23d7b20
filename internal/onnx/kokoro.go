package onnx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/example/go-native-tts/internal/config"
	"github.com/example/go-native-tts/internal/engine"
)

const (
	inputTokens = "tokens"
	inputStyle  = "style"
	inputSpeed  = "speed"
	outputAudio = "audio"
)

// graph is the part of Runner the engine uses.
type graph interface {
	Run(ctx context.Context, inputs map[string]*Tensor) (map[string]*Tensor, error)
	Close()
}

// Kokoro runs the Kokoro v1.0 graph with styles from a voice bank.
type Kokoro struct {
	graph  graph
	bank   *VoiceBank
	logger *slog.Logger
}

var _ engine.Engine = (*Kokoro)(nil)

// Synthesize produces 24 kHz mono samples for one sentence. Text that maps
// to no tokens yields no samples.
func (k *Kokoro) Synthesize(ctx context.Context, text string, voice engine.Voice) ([]float32, error) {
	if k.graph == nil {
		return nil, errors.New("kokoro engine is closed")
	}

	ids := Tokenize(text)
	if len(ids) == 0 {
		return nil, nil
	}

	style, err := k.bank.Style(k.voiceID(voice.ID), len(ids))
	if err != nil {
		return nil, err
	}

	padded := padTokens(ids)
	tokens, err := NewTensor(padded, []int64{1, int64(len(padded))})
	if err != nil {
		return nil, err
	}
	styleT, err := NewTensor(style, []int64{1, StyleDim})
	if err != nil {
		return nil, err
	}
	speedT, err := NewTensor([]float32{voice.Speed}, []int64{1})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := k.graph.Run(ctx, map[string]*Tensor{
		inputTokens: tokens,
		inputStyle:  styleT,
		inputSpeed:  speedT,
	})
	if err != nil {
		return nil, err
	}

	audio, ok := out[outputAudio]
	if !ok {
		return nil, fmt.Errorf("%w: graph produced no %q output", engine.ErrCorrupt, outputAudio)
	}
	samples, err := audio.Float32s()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrCorrupt, err)
	}
	for _, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return nil, fmt.Errorf("%w: graph produced non-finite samples", engine.ErrCorrupt)
		}
	}

	k.logger.DebugContext(ctx, "kokoro inference",
		slog.Int("tokens", len(ids)),
		slog.Int("samples", len(samples)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return samples, nil
}

// voiceID picks id when the bank has it, then the default preset, then
// whatever the bank holds first.
func (k *Kokoro) voiceID(id string) string {
	if k.bank.Has(id) {
		return id
	}
	if k.bank.Has(engine.DefaultVoiceID) {
		return engine.DefaultVoiceID
	}
	return k.bank.Voices()[0]
}

func (k *Kokoro) Close() error {
	if k.graph != nil {
		k.graph.Close()
		k.graph = nil
	}
	return nil
}

// Loader builds Kokoro engines from installed assets.
type Loader struct {
	Runtime config.RuntimeConfig
	Logger  *slog.Logger
}

var _ engine.Loader = Loader{}

// Load reads the voice bank and opens an ORT session for the model. Parse
// and session failures are reported as engine.ErrCorrupt; a missing runtime
// library is not.
func (l Loader) Load(ctx context.Context, modelPath, voicesPath string) (engine.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	info, err := DetectRuntime(l.Runtime)
	if err != nil {
		return nil, fmt.Errorf("onnx runtime: %w", err)
	}

	bank, err := loadVoiceBank(voicesPath)
	if err != nil {
		return nil, err
	}

	runner, err := NewRunner("kokoro", modelPath, RunnerConfig{
		LibraryPath: info.LibraryPath,
		APIVersion:  l.Runtime.ORTAPIVersion,
	})
	if err != nil {
		if errors.Is(err, ErrSession) {
			return nil, fmt.Errorf("%w: %w", engine.ErrCorrupt, err)
		}
		return nil, err
	}

	if missing := missingPresets(bank); len(missing) > 0 {
		logger.WarnContext(ctx, "voice bank lacks presets; they fall back to the default voice",
			slog.Any("voices", missing))
	}

	logger.InfoContext(ctx, "kokoro engine loaded",
		slog.String("model", modelPath),
		slog.String("ort_library", info.LibraryPath),
		slog.String("ort_version", info.Version),
		slog.Int("voices", len(bank.Voices())),
	)

	return &Kokoro{graph: runner, bank: bank, logger: logger}, nil
}

// missingPresets lists the preset ids the bank has no style table for.
func missingPresets(bank *VoiceBank) []string {
	var missing []string
	for _, id := range engine.Presets() {
		if !bank.Has(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

func loadVoiceBank(path string) (*VoiceBank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open voice bank: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat voice bank: %w", err)
	}

	bank, err := ReadVoiceBank(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrCorrupt, err)
	}
	return bank, nil
}
