// Package pocket implements engine.Engine on top of the pocket-tts CLI.
// The subprocess brings its own model, so the installed Kokoro assets are
// only checked, not read.
package pocket

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	pockettts "github.com/MeKo-Christian/go-call-pocket-tts"

	"github.com/example/go-native-tts/internal/audio"
	"github.com/example/go-native-tts/internal/engine"
)

// voiceMap pairs each preset with the closest built-in pocket-tts voice.
var voiceMap = map[string]string{
	engine.AfSky:      "alba",
	engine.AfBella:    "fantine",
	engine.AfNicole:   "cosette",
	engine.AfSarah:    "eponine",
	engine.AmAdam:     "marius",
	engine.AmMichael:  "jean",
	engine.BfEmma:     "azelma",
	engine.BfIsabella: "cosette",
	engine.BmGeorge:   "javert",
	engine.BmLewis:    "marius",
}

// VoiceFor returns the pocket-tts voice used for a preset id.
func VoiceFor(id string) string {
	if v, ok := voiceMap[id]; ok {
		return v
	}
	return voiceMap[engine.DefaultVoiceID]
}

type generateFunc func(ctx context.Context, text string, opts *pockettts.Options) (*pockettts.WAVResult, error)

// Engine shells out once per sentence. Speed is not supported by the CLI
// and is ignored.
type Engine struct {
	exe      string
	logger   *slog.Logger
	generate generateFunc
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) Synthesize(ctx context.Context, text string, voice engine.Voice) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	res, err := e.generate(ctx, text, &pockettts.Options{
		Voice:          VoiceFor(voice.ID),
		ExecutablePath: e.exe,
		Quiet:          true,
		LogWriter:      slogWriter{ctx: ctx, logger: e.logger},
	})
	if err != nil {
		return nil, fmt.Errorf("pocket-tts generate: %w", err)
	}

	samples, err := audio.DecodeWAV(res.Data)
	if err != nil {
		return nil, fmt.Errorf("decode pocket-tts output: %w", err)
	}
	return samples, nil
}

func (e *Engine) Close() error { return nil }

// Loader checks that the pocket-tts executable is resolvable.
type Loader struct {
	ExecutablePath string
	Logger         *slog.Logger
}

var _ engine.Loader = Loader{}

func (l Loader) Load(ctx context.Context, _, _ string) (engine.Engine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := pockettts.Preflight(l.ExecutablePath); err != nil {
		return nil, fmt.Errorf("pocket-tts preflight: %w", err)
	}

	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "pocket-tts engine ready", slog.String("executable", executableName(l.ExecutablePath)))

	return &Engine{exe: l.ExecutablePath, logger: logger, generate: pockettts.Generate}, nil
}

func executableName(p string) string {
	if p == "" {
		return "pocket-tts"
	}
	return p
}

// slogWriter forwards subprocess stderr lines to the logger at debug level.
type slogWriter struct {
	ctx    context.Context
	logger *slog.Logger
}

func (w slogWriter) Write(p []byte) (int, error) {
	for line := range strings.Lines(string(p)) {
		if line = strings.TrimSpace(line); line != "" {
			w.logger.DebugContext(w.ctx, "pocket-tts", slog.String("stderr", line))
		}
	}
	return len(p), nil
}
