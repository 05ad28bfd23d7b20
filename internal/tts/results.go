package tts

// Status values returned by state-changing methods.
const (
	StateInstalled    = "installed"
	StateCancelled    = "cancelled"
	StateCacheCleared = "cache_cleared"
	StateModelRemoved = "model_removed"
	StateImported     = "imported"
)

type StatusResult struct {
	Installed bool `json:"installed"`
	Loaded    bool `json:"loaded"`
}

type StateResult struct {
	Status string `json:"status"`
}

// Segment locates one synthesized sentence in both the input text and the
// output audio. Character offsets count Unicode scalar values.
type Segment struct {
	StartChar int     `json:"startChar"`
	EndChar   int     `json:"endChar"`
	StartMs   float64 `json:"startMs"`
	EndMs     float64 `json:"endMs"`
}

type SynthesisResult struct {
	Path       string    `json:"path"`
	DurationMS float64   `json:"duration_ms"`
	Segments   []Segment `json:"segments"`
}

type CacheStats struct {
	ModelBytes uint64 `json:"model_bytes"`
	ModelFiles uint64 `json:"model_files"`
	CacheBytes uint64 `json:"cache_bytes"`
	CacheFiles uint64 `json:"cache_files"`
	ModelDir   string `json:"model_dir"`
	CacheDir   string `json:"cache_dir"`
}

type AudioResult struct {
	Base64 string `json:"base64"`
}

type PathResult struct {
	Path string `json:"path"`
}
