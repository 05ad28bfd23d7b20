package model

import "path/filepath"

// Installed asset names and the near-miss/legacy names recognized on import.
const (
	ModelFilename        = "kokoro-v1.0.onnx"
	VoicesFilename       = "voices.bin"
	Int8ModelFilename    = "kokoro-v1.0.int8.onnx"
	LegacyVoicesFilename = "voices-v1.0.bin"
)

// Size floors below which an asset is treated as truncated or as an HTML
// error page saved under the asset's name.
const (
	MinModelBytes  = 200_000_000
	MinVoicesBytes = 20_000_000
)

const (
	DefaultModelURL  = "https://github.com/thewh1teagle/kokoro-onnx/releases/download/model-files-v1.0/kokoro-v1.0.onnx"
	DefaultVoicesURL = "https://github.com/thewh1teagle/kokoro-onnx/releases/download/model-files-v1.0/voices-v1.0.bin"
)

// Asset is one required model file.
type Asset struct {
	Label    string
	Filename string
	URL      string
	MinBytes int64
}

// Manifest describes the two assets the engine is loaded from.
type Manifest struct {
	Model  Asset
	Voices Asset
}

// DefaultManifest returns the pinned Kokoro v1.0 assets.
func DefaultManifest() Manifest {
	return Manifest{
		Model: Asset{
			Label:    "Model",
			Filename: ModelFilename,
			URL:      DefaultModelURL,
			MinBytes: MinModelBytes,
		},
		Voices: Asset{
			Label:    "Voices",
			Filename: VoicesFilename,
			URL:      DefaultVoicesURL,
			MinBytes: MinVoicesBytes,
		},
	}
}

// Assets returns the assets in download order.
func (m Manifest) Assets() []Asset {
	return []Asset{m.Model, m.Voices}
}

// Paths returns the installed locations of both assets under dir.
func (m Manifest) Paths(dir string) (modelPath, voicesPath string) {
	return filepath.Join(dir, m.Model.Filename), filepath.Join(dir, m.Voices.Filename)
}
