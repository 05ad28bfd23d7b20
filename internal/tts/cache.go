package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/go-native-tts/internal/plugin"
)

// Status reports whether valid assets are on disk and whether an engine is
// loaded. It takes no lock.
func (in *Instance) Status() StatusResult {
	return StatusResult{
		Installed: in.manifest.Installed(in.ModelDir()),
		Loaded:    in.loaded.Load(),
	}
}

// CacheStats sums file sizes and counts under the model and cache
// directories.
func (in *Instance) CacheStats() (CacheStats, error) {
	modelBytes, modelFiles, err := dirStats(in.ModelDir())
	if err != nil {
		return CacheStats{}, err
	}
	cacheBytes, cacheFiles, err := dirStats(in.CacheDir())
	if err != nil {
		return CacheStats{}, err
	}

	return CacheStats{
		ModelBytes: modelBytes,
		ModelFiles: modelFiles,
		CacheBytes: cacheBytes,
		CacheFiles: cacheFiles,
		ModelDir:   in.ModelDir(),
		CacheDir:   in.CacheDir(),
	}, nil
}

// dirStats walks root with an explicit stack. Symlinks are neither followed
// nor counted. A missing root counts as empty.
func dirStats(root string) (bytes, files uint64, err error) {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return 0, 0, nil
	}

	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return 0, 0, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, e := range entries {
			switch {
			case e.IsDir():
				stack = append(stack, filepath.Join(dir, e.Name()))
			case e.Type().IsRegular():
				info, err := e.Info()
				if err != nil {
					return 0, 0, fmt.Errorf("stat %s: %w", e.Name(), err)
				}
				files++
				bytes += uint64(info.Size())
			}
		}
	}

	return bytes, files, nil
}

// ClearCache deletes every cached WAV file. It is idempotent.
func (in *Instance) ClearCache() (StateResult, error) {
	if err := os.RemoveAll(in.CacheDir()); err != nil {
		return StateResult{}, fmt.Errorf("clear cache: %w", err)
	}
	in.logger.Info("cache cleared", slog.String("cache_dir", in.CacheDir()))
	return StateResult{Status: StateCacheCleared}, nil
}

// RemoveModel deletes the model directory and drops the loaded engine so a
// later synthesis reports the model as missing. It is idempotent.
func (in *Instance) RemoveModel(ctx context.Context) (StateResult, error) {
	if err := in.lock(ctx); err != nil {
		return StateResult{}, err
	}
	defer in.unlock()

	in.dropEngineLocked()
	if err := os.RemoveAll(in.ModelDir()); err != nil {
		return StateResult{}, fmt.Errorf("remove model: %w", err)
	}
	in.logger.InfoContext(ctx, "model removed", slog.String("model_dir", in.ModelDir()))
	return StateResult{Status: StateModelRemoved}, nil
}

// ImportLocal copies assets from a local folder into the model directory
// and verifies them. The loaded engine is dropped first.
func (in *Instance) ImportLocal(ctx context.Context, sourceDir string) (StateResult, error) {
	if err := in.lock(ctx); err != nil {
		return StateResult{}, err
	}
	defer in.unlock()

	in.dropEngineLocked()
	if err := in.manifest.Import(sourceDir, in.ModelDir()); err != nil {
		return StateResult{}, err
	}
	in.logger.InfoContext(ctx, "model imported", slog.String("source", sourceDir))
	return StateResult{Status: StateImported}, nil
}

// ReadAudio returns a cached file base64-encoded. Relative paths resolve
// against the cache directory; after resolving symlinks the target must lie
// inside it.
func (in *Instance) ReadAudio(path string) (AudioResult, error) {
	target, err := in.resolveCachePath(path)
	if err != nil {
		return AudioResult{}, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return AudioResult{}, fmt.Errorf("read audio: %w", err)
	}
	return AudioResult{Base64: base64.StdEncoding.EncodeToString(data)}, nil
}

func (in *Instance) resolveCachePath(path string) (string, error) {
	cacheDir, err := filepath.EvalSymlinks(in.CacheDir())
	if err != nil {
		return "", &plugin.Error{Code: plugin.CodeInvalidPath, Message: "Audio cache is empty.", Err: err}
	}
	cacheDir, err = filepath.Abs(cacheDir)
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(in.CacheDir(), path)
	}
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", ErrInvalidPath
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(cacheDir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}

	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrInvalidPath
	}
	return target, nil
}
