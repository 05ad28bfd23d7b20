package tts

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/model"
	"github.com/example/go-native-tts/internal/plugin"
)

// Instance is an active core.tts plugin.
//
// The engine handle is a single-writer resource: every operation that reads
// or replaces it holds engineLock, and synthesis holds it for the whole
// sentence loop. Synthesize, install, import and remove_model therefore run
// one at a time. status and install_progress never take the lock.
//
// The cancel flag is shared by all callers. It is only meaningful because
// synthesis is serialized: cancel always targets the one synthesis that
// holds the lock.
type Instance struct {
	dir      string
	manifest model.Manifest
	loader   engine.Loader
	logger   *slog.Logger

	engineLock *semaphore.Weighted
	eng        engine.Engine // guarded by engineLock
	loaded     atomic.Bool

	cancelled  atomic.Bool
	progress   *model.ProgressTracker
	downloader *model.Downloader
}

var _ plugin.Invocable = (*Instance)(nil)

// NewInstance creates an instance keeping its files under dir.
func NewInstance(dir string, opts Options, logger *slog.Logger) *Instance {
	logger = newLogger(logger)
	progress := model.NewProgressTracker()

	return &Instance{
		dir:        dir,
		manifest:   opts.manifest(),
		loader:     opts.Loader,
		logger:     logger,
		engineLock: semaphore.NewWeighted(1),
		progress:   progress,
		downloader: &model.Downloader{
			Client:    opts.HTTPClient,
			UserAgent: opts.UserAgent,
			Progress:  progress,
			Logger:    logger,
		},
	}
}

func (in *Instance) ModelDir() string { return filepath.Join(in.dir, "models") }

func (in *Instance) CacheDir() string { return filepath.Join(in.dir, "cache") }

func (in *Instance) lock(ctx context.Context) error {
	return in.engineLock.Acquire(ctx, 1)
}

func (in *Instance) unlock() {
	in.engineLock.Release(1)
}

// ensureLoadedLocked returns the engine, loading it from disk when needed.
// The caller holds engineLock.
func (in *Instance) ensureLoadedLocked(ctx context.Context) (engine.Engine, error) {
	if in.eng != nil {
		return in.eng, nil
	}

	if err := in.manifest.Check(in.ModelDir()); err != nil {
		return nil, assetError(err)
	}

	if in.loader == nil {
		return nil, errors.New("no synthesis engine configured")
	}

	modelPath, voicesPath := in.manifest.Paths(in.ModelDir())
	eng, err := in.loader.Load(ctx, modelPath, voicesPath)
	if err != nil {
		if errors.Is(err, engine.ErrCorrupt) {
			return nil, &plugin.Error{
				Code:    plugin.CodeModelCorrupt,
				Message: "Model files appear corrupt. Reinstall the TTS model.",
				Err:     err,
			}
		}
		return nil, &plugin.Error{
			Code:    plugin.CodeInvokeFailed,
			Message: "Failed to load Kokoro: " + err.Error(),
			Err:     err,
		}
	}

	in.setEngineLocked(eng)
	return eng, nil
}

func (in *Instance) setEngineLocked(eng engine.Engine) {
	in.eng = eng
	in.loaded.Store(eng != nil)
}

// dropEngineLocked closes and forgets the loaded engine, if any.
func (in *Instance) dropEngineLocked() {
	if in.eng == nil {
		return
	}
	if err := in.eng.Close(); err != nil {
		in.logger.Warn("closing engine failed", slog.String("error", err.Error()))
	}
	in.setEngineLocked(nil)
}

// Close releases the engine. A running synthesis is cancelled at its next
// sentence boundary and Close waits for it to return.
func (in *Instance) Close() error {
	in.cancelled.Store(true)
	if err := in.lock(context.Background()); err != nil {
		return err
	}
	defer in.unlock()
	in.dropEngineLocked()
	return nil
}
