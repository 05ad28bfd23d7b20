package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrImportSource is returned when a local import folder lacks a usable asset.
var ErrImportSource = errors.New("import source invalid")

// Import copies both assets from sourceDir into dir and verifies them. The
// int8 model variant is rejected by name; the legacy voices name is accepted.
func (m Manifest) Import(sourceDir, dir string) error {
	modelSrc, err := pickModelSource(sourceDir, m.Model.Filename)
	if err != nil {
		return err
	}
	voicesSrc, err := pickVoicesSource(sourceDir, m.Voices.Filename)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	modelPath, voicesPath := m.Paths(dir)
	if err := copyFile(modelSrc, modelPath); err != nil {
		return err
	}
	if err := copyFile(voicesSrc, voicesPath); err != nil {
		return err
	}

	return m.Check(dir)
}

func pickModelSource(sourceDir, want string) (string, error) {
	p := filepath.Join(sourceDir, want)
	if isFile(p) {
		return p, nil
	}
	if isFile(filepath.Join(sourceDir, Int8ModelFilename)) {
		return "", fmt.Errorf("%w: found %s, but %s is required for higher quality speech",
			ErrImportSource, Int8ModelFilename, want)
	}
	return "", fmt.Errorf("%w: local model file %s not found in %s", ErrImportSource, want, sourceDir)
}

func pickVoicesSource(sourceDir, want string) (string, error) {
	for _, name := range []string{want, LegacyVoicesFilename} {
		p := filepath.Join(sourceDir, name)
		if isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: local voices file (%s or %s) not found in %s",
		ErrImportSource, want, LegacyVoicesFilename, sourceDir)
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
