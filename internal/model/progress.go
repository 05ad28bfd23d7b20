package model

import "sync"

// Status is the coarse install state reported to pollers.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusDownloading Status = "downloading"
	StatusVerifying   Status = "verifying"
	StatusComplete    Status = "complete"
)

// Progress is a point-in-time snapshot of an install.
type Progress struct {
	Status          Status `json:"status"`
	Phase           string `json:"phase"`
	DownloadedBytes uint64 `json:"downloaded_bytes"`
	TotalBytes      uint64 `json:"total_bytes"`
}

// ProgressTracker holds the latest install progress. Each install
// overwrites it; no history is kept.
type ProgressTracker struct {
	mu sync.Mutex
	p  Progress
}

func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{p: Progress{Status: StatusIdle}}
}

func (t *ProgressTracker) Set(status Status, phase string, downloaded, total uint64) {
	t.mu.Lock()
	t.p = Progress{Status: status, Phase: phase, DownloadedBytes: downloaded, TotalBytes: total}
	t.mu.Unlock()
}

// Snapshot never blocks on an in-flight download, only on a field copy.
func (t *ProgressTracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p
}
