package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/example/go-native-tts/internal/audio"
	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/plugin"
	"github.com/example/go-native-tts/internal/text"
)

// SilenceMS is the pause appended after every sentence.
const SilenceMS = 100.0

// CacheKey names the cache entry for a synthesis input. voice is the id as
// requested, before any fallback to the default preset.
func CacheKey(text, voice string, speed float32) string {
	sum := sha256.Sum256([]byte(text + "-" + voice + "-" + formatSpeed(speed)))
	return hex.EncodeToString(sum[:])
}

// formatSpeed renders speed in its shortest float32 form, so 1 is "1" and
// 1.1 is "1.1".
func formatSpeed(speed float32) string {
	return strconv.FormatFloat(float64(speed), 'f', -1, 32)
}

// Cancel asks the running synthesis to stop at its next sentence boundary.
// It does not wait.
func (in *Instance) Cancel() StateResult {
	in.cancelled.Store(true)
	return StateResult{Status: StateCancelled}
}

// Synthesize renders req.Text sentence by sentence into a WAV file in the
// cache directory. The engine lock is held for the whole loop.
func (in *Instance) Synthesize(ctx context.Context, req SynthesizeRequest) (SynthesisResult, error) {
	if err := text.CheckText(req.Text); err != nil {
		return SynthesisResult{}, invalidPayload("Text is empty")
	}

	if err := in.lock(ctx); err != nil {
		return SynthesisResult{}, ErrCancelled
	}
	defer in.unlock()

	// Reset under the lock so a cancel aimed at the previous call does not
	// leak into this one.
	in.cancelled.Store(false)

	eng, err := in.ensureLoadedLocked(ctx)
	if err != nil {
		return SynthesisResult{}, err
	}

	voice := engine.ResolveVoice(req.Voice, req.Speed)
	start := time.Now()

	var (
		samples  []float32
		segments = []Segment{}
		cursor   float64
		silence  = audio.Silence(SilenceMS)
	)

	for _, s := range text.Sentences(req.Text) {
		if err := in.checkCancelled(ctx); err != nil {
			return SynthesisResult{}, err
		}
		if s.Blank() {
			continue
		}

		trimmed := strings.TrimSpace(s.Text)
		out, err := eng.Synthesize(ctx, text.Sanitize(trimmed), voice)
		if err != nil {
			return SynthesisResult{}, in.segmentError(ctx, trimmed, err)
		}

		segMS := audio.DurationMS(len(out))
		samples = append(samples, out...)
		samples = append(samples, silence...)

		segments = append(segments, Segment{
			StartChar: s.CharStart,
			EndChar:   s.CharEnd(),
			StartMs:   cursor,
			EndMs:     cursor + segMS,
		})
		cursor += segMS + SilenceMS
	}

	if err := in.checkCancelled(ctx); err != nil {
		return SynthesisResult{}, err
	}

	cacheDir := in.CacheDir()
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return SynthesisResult{}, fmt.Errorf("create cache dir: %w", err)
	}
	path := filepath.Join(cacheDir, CacheKey(req.Text, req.Voice, req.Speed)+".wav")
	if err := audio.WriteWAVFile(path, samples); err != nil {
		return SynthesisResult{}, err
	}

	in.logger.InfoContext(ctx, "synthesis complete",
		slog.String("voice", voice.ID),
		slog.Int("segments", len(segments)),
		slog.Float64("audio_ms", cursor),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return SynthesisResult{Path: path, DurationMS: cursor, Segments: segments}, nil
}

func (in *Instance) checkCancelled(ctx context.Context) error {
	if in.cancelled.Load() || ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

func (in *Instance) segmentError(ctx context.Context, sentence string, err error) error {
	switch {
	case ctx.Err() != nil:
		return ErrCancelled
	case errors.Is(err, engine.ErrCorrupt):
		return &plugin.Error{
			Code:    plugin.CodeModelCorrupt,
			Message: "Model files appear corrupt. Reinstall the TTS model.",
			Err:     err,
		}
	default:
		return &plugin.Error{
			Code:    plugin.CodeInvokeFailed,
			Message: fmt.Sprintf("Synthesis failed for segment '%s': %v", sentence, err),
			Err:     err,
		}
	}
}
