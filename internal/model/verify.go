package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrAssetMissing    = errors.New("model asset missing")
	ErrAssetIncomplete = errors.New("model asset incomplete")
)

// AssetError reports a missing or undersized asset. It unwraps to
// ErrAssetMissing or ErrAssetIncomplete.
type AssetError struct {
	Label    string
	Path     string
	Size     int64
	MinBytes int64
	Err      error
}

func (e *AssetError) Error() string {
	if errors.Is(e.Err, ErrAssetIncomplete) {
		return fmt.Sprintf("%s file looks incomplete (%d bytes, expected at least %d); please reinstall the TTS model.",
			e.Label, e.Size, e.MinBytes)
	}
	return fmt.Sprintf("%s file missing; please install the TTS model.", e.Label)
}

func (e *AssetError) Unwrap() error { return e.Err }

// Check verifies that every asset exists under dir and meets its size floor.
func (m Manifest) Check(dir string) error {
	for _, a := range m.Assets() {
		if err := checkAsset(dir, a); err != nil {
			return err
		}
	}
	return nil
}

// Installed reports whether Check passes.
func (m Manifest) Installed(dir string) bool {
	return m.Check(dir) == nil
}

func checkAsset(dir string, a Asset) error {
	path := filepath.Join(dir, a.Filename)

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return &AssetError{Label: a.Label, Path: path, MinBytes: a.MinBytes, Err: ErrAssetMissing}
	}
	if fi.Size() < a.MinBytes {
		return &AssetError{Label: a.Label, Path: path, Size: fi.Size(), MinBytes: a.MinBytes, Err: ErrAssetIncomplete}
	}

	return nil
}
