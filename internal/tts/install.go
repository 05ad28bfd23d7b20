package tts

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/model"
	"github.com/example/go-native-tts/internal/plugin"
)

// PhaseFailed is reported by install_progress after an install fails.
const PhaseFailed = "Failed"

// Install downloads both assets into a fresh model directory, verifies their
// sizes and loads the engine. Any failure removes the model directory.
func (in *Instance) Install(ctx context.Context) (res StateResult, err error) {
	if err := in.lock(ctx); err != nil {
		return StateResult{}, err
	}
	defer in.unlock()

	in.dropEngineLocked()

	dir := in.ModelDir()
	start := time.Now()
	log := in.logger.With(slog.String("model_dir", dir))

	defer func() {
		if err == nil {
			return
		}
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			log.WarnContext(ctx, "cleanup after failed install", slog.String("error", rmErr.Error()))
		}
		in.progress.Set(model.StatusIdle, PhaseFailed, 0, 0)
		log.WarnContext(ctx, "install failed", slog.String("error", err.Error()))
	}()

	in.progress.Set(model.StatusDownloading, in.manifest.Model.Label, 0, 0)
	total, err := in.downloader.Fetch(ctx, dir, in.manifest)
	if err != nil {
		return StateResult{}, err
	}

	size := uint64(total)
	in.progress.Set(model.StatusVerifying, "Checking files", size, size)
	if err := in.manifest.Check(dir); err != nil {
		return StateResult{}, assetError(err)
	}

	if in.loader == nil {
		return StateResult{}, errors.New("no synthesis engine configured")
	}
	modelPath, voicesPath := in.manifest.Paths(dir)
	eng, err := in.loader.Load(ctx, modelPath, voicesPath)
	if err != nil {
		if errors.Is(err, engine.ErrCorrupt) {
			return StateResult{}, &plugin.Error{
				Code:    plugin.CodeModelCorrupt,
				Message: "Failed to load Kokoro. The download looks corrupted; please retry the install.",
				Err:     err,
			}
		}
		return StateResult{}, &plugin.Error{
			Code:    plugin.CodeInvokeFailed,
			Message: "Failed to load Kokoro: " + err.Error(),
			Err:     err,
		}
	}
	in.setEngineLocked(eng)

	in.progress.Set(model.StatusComplete, "Done", size, size)
	log.InfoContext(ctx, "model installed",
		slog.Int64("bytes", total),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return StateResult{Status: StateInstalled}, nil
}
