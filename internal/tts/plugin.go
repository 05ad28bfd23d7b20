// Package tts is the core.tts plugin: it installs the Kokoro assets,
// synthesizes sentence-aligned WAV files into a content-addressed cache and
// manages the cache and model directories.
package tts

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/model"
	"github.com/example/go-native-tts/internal/plugin"
)

// PluginID is the registry id of the TTS plugin.
const PluginID = "core.tts"

// Options configures instances created by the plugin.
type Options struct {
	Loader engine.Loader
	// Manifest defaults to model.DefaultManifest when its filenames are empty.
	Manifest   model.Manifest
	HTTPClient *http.Client
	UserAgent  string
}

// Plugin is the registry descriptor for core.tts.
type Plugin struct {
	opts Options
}

var _ plugin.Plugin = (*Plugin)(nil)

func NewPlugin(opts Options) *Plugin {
	return &Plugin{opts: opts}
}

func (p *Plugin) ID() string { return PluginID }

// InstanceDir is where an instance activated with dataDir keeps its files.
func InstanceDir(dataDir string) string {
	return filepath.Join(dataDir, "tts")
}

// Activate creates an instance rooted at InstanceDir(data dir).
func (p *Plugin) Activate(pctx plugin.Context) (*plugin.Active, error) {
	if pctx.DataDir == "" {
		return nil, fmt.Errorf("%s: data dir is required", PluginID)
	}
	in := NewInstance(InstanceDir(pctx.DataDir), p.opts, pctx.Logger)
	return &plugin.Active{Instance: in}, nil
}

// Deactivate cancels any running synthesis and releases the loaded engine.
func (p *Plugin) Deactivate(a *plugin.Active) error {
	in, ok := a.Instance.(*Instance)
	if !ok {
		return fmt.Errorf("%s: unexpected instance type %T", PluginID, a.Instance)
	}
	return in.Close()
}

func (o Options) manifest() model.Manifest {
	if o.Manifest.Model.Filename == "" || o.Manifest.Voices.Filename == "" {
		return model.DefaultManifest()
	}
	return o.Manifest
}

// newLogger falls back to slog.Default for a nil logger.
func newLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
