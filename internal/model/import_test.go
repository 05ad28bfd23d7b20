package model

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestImport(t *testing.T) {
	m := smallManifest()

	tests := []struct {
		name    string
		files   map[string]int
		wantErr error
		wantMsg string
	}{
		{
			name:  "canonical names",
			files: map[string]int{ModelFilename: 64, VoicesFilename: 16},
		},
		{
			name:  "legacy voices name",
			files: map[string]int{ModelFilename: 64, LegacyVoicesFilename: 16},
		},
		{
			name:    "int8 model only",
			files:   map[string]int{Int8ModelFilename: 64, VoicesFilename: 16},
			wantErr: ErrImportSource,
			wantMsg: Int8ModelFilename,
		},
		{
			name:    "no model",
			files:   map[string]int{VoicesFilename: 16},
			wantErr: ErrImportSource,
			wantMsg: "not found",
		},
		{
			name:    "no voices",
			files:   map[string]int{ModelFilename: 64},
			wantErr: ErrImportSource,
			wantMsg: LegacyVoicesFilename,
		},
		{
			name:    "undersized model",
			files:   map[string]int{ModelFilename: 8, VoicesFilename: 16},
			wantErr: ErrAssetIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := t.TempDir()
			for name, size := range tt.files {
				writeSized(t, filepath.Join(src, name), size)
			}
			dst := filepath.Join(t.TempDir(), "kokoro")

			err := m.Import(src, dst)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Import: %v", err)
				}
				modelPath, voicesPath := m.Paths(dst)
				for _, p := range []string{modelPath, voicesPath} {
					if _, err := os.Stat(p); err != nil {
						t.Errorf("expected %s after import: %v", filepath.Base(p), err)
					}
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Import error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message %q should mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestImport_PrefersCanonicalVoices(t *testing.T) {
	m := smallManifest()
	src := t.TempDir()
	writeSized(t, filepath.Join(src, ModelFilename), 64)
	writeSized(t, filepath.Join(src, VoicesFilename), 32)
	writeSized(t, filepath.Join(src, LegacyVoicesFilename), 16)

	dst := t.TempDir()
	if err := m.Import(src, dst); err != nil {
		t.Fatalf("Import: %v", err)
	}
	_, voicesPath := m.Paths(dst)
	fi, err := os.Stat(voicesPath)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != 32 {
		t.Errorf("voices size = %d, want 32 (canonical file)", fi.Size())
	}
}
