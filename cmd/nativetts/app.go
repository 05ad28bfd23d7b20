package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/go-native-tts/internal/config"
	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/model"
	"github.com/example/go-native-tts/internal/onnx"
	"github.com/example/go-native-tts/internal/plugin"
	"github.com/example/go-native-tts/internal/pocket"
	"github.com/example/go-native-tts/internal/tts"
)

// loaderFor picks the engine backend. Tests replace it.
var loaderFor = newLoader

func newLoader(cfg config.Config, logger *slog.Logger) (engine.Loader, error) {
	switch cfg.TTS.Backend {
	case config.BackendONNX:
		return onnx.Loader{Runtime: cfg.Runtime, Logger: logger}, nil
	case config.BackendCLI:
		return pocket.Loader{ExecutablePath: cfg.TTS.CLIPath, Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q", cfg.TTS.Backend)
	}
}

// manifestFor applies configured URL overrides to the default asset set.
func manifestFor(cfg config.InstallConfig) model.Manifest {
	m := model.DefaultManifest()
	if cfg.ModelURL != "" {
		m.Model.URL = cfg.ModelURL
	}
	if cfg.VoicesURL != "" {
		m.Voices.URL = cfg.VoicesURL
	}
	return m
}

func pluginOptions(cfg config.Config, logger *slog.Logger) (tts.Options, error) {
	loader, err := loaderFor(cfg, logger)
	if err != nil {
		return tts.Options{}, err
	}
	return tts.Options{
		Loader:    loader,
		Manifest:  manifestFor(cfg.Install),
		UserAgent: cfg.Install.UserAgent,
	}, nil
}

// newRegistry builds a registry with every built-in plugin registered.
func newRegistry(cfg config.Config, logger *slog.Logger) (*plugin.Registry, error) {
	dataDir, err := cfg.Paths.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	opts, err := pluginOptions(cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := plugin.NewRegistry(dataDir, logger)
	reg.Register(tts.NewPlugin(opts))
	return reg, nil
}

// localSession runs core.tts in-process for the lifetime of one command.
type localSession struct {
	reg *plugin.Registry
}

func openLocal(cfg config.Config) (*localSession, error) {
	reg, err := newRegistry(cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	if err := reg.Activate(tts.PluginID); err != nil {
		return nil, err
	}
	return &localSession{reg: reg}, nil
}

func (s *localSession) call(ctx context.Context, method string, payload any) (plugin.InvokeResult, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return plugin.InvokeResult{}, fmt.Errorf("encode payload: %w", err)
		}
		raw = b
	}
	return s.reg.Call(ctx, uuid.NewString(), tts.PluginID, method, raw), nil
}

func (s *localSession) Close() error {
	return s.reg.Deactivate(tts.PluginID)
}

// runLocal performs one core.tts call and prints its envelope.
func runLocal(ctx context.Context, out io.Writer, method string, payload any) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	s, err := openLocal(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	res, err := s.call(ctx, method, payload)
	if err != nil {
		return err
	}
	return printEnvelope(out, res)
}

// printEnvelope writes res as indented JSON and turns a failure into an
// error so the process exits non-zero.
func printEnvelope(out io.Writer, res plugin.InvokeResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	return envelopeErr(res)
}

func envelopeErr(res plugin.InvokeResult) error {
	if res.OK || res.Error == nil {
		return nil
	}
	return fmt.Errorf("%s: %s", res.Error.Code, res.Error.Message)
}
