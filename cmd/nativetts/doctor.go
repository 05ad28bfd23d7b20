package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pockettts "github.com/MeKo-Christian/go-call-pocket-tts"

	"github.com/example/go-native-tts/internal/config"
	"github.com/example/go-native-tts/internal/doctor"
	"github.com/example/go-native-tts/internal/onnx"
	"github.com/example/go-native-tts/internal/tts"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run local runtime and model checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "backend: %s\n", cfg.TTS.Backend)

			dcfg, err := doctorConfig(cfg)
			if err != nil {
				return err
			}
			result := doctor.Run(dcfg, out)

			if result.Failed() {
				for _, f := range result.Failures() {
					// #nosec G705 -- Writes plain diagnostic text to stderr for CLI output, not HTML rendering.
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}
				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(out, "doctor checks passed")
			return nil
		},
	}
}

// doctorConfig selects the checks relevant to the configured backend.
func doctorConfig(cfg config.Config) (doctor.Config, error) {
	dataDir, err := cfg.Paths.ResolveDataDir()
	if err != nil {
		return doctor.Config{}, err
	}
	modelDir := filepath.Join(tts.InstanceDir(dataDir), "models")
	manifest := manifestFor(cfg.Install)

	cli := cfg.TTS.Backend == config.BackendCLI
	exe := cfg.TTS.CLIPath
	if exe == "" {
		exe = "pocket-tts"
	}

	return doctor.Config{
		ONNXRuntime: func() (string, error) {
			return probeONNXRuntime(cfg.Runtime)
		},
		SkipONNXRuntime: cli,
		PocketTTSVersion: func() (string, error) {
			return probePocketTTSVersion(exe)
		},
		SkipPocketTTS: !cli,
		PythonVersion: probePythonVersion,
		SkipPython:    !cli,
		ModelAssets:   func() error { return manifest.Check(modelDir) },
		ModelDir:      modelDir,
	}, nil
}

func probeONNXRuntime(rc config.RuntimeConfig) (string, error) {
	info, err := onnx.DetectRuntime(rc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (version %s, api %d)", info.LibraryPath, info.Version, rc.ORTAPIVersion), nil
}

// probePocketTTSVersion checks the executable resolves, then runs
// `pocket-tts --version` and returns its output.
func probePocketTTSVersion(exe string) (string, error) {
	if err := pockettts.Preflight(exe); err != nil {
		return "", err
	}

	out, err := exec.CommandContext(context.Background(), exe, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("%s --version failed: %w", exe, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// probePythonVersion tries python3 then python and returns the version string.
func probePythonVersion() (string, error) {
	for _, bin := range []string{"python3", "python"} {
		out, err := exec.CommandContext(context.Background(), bin, "--version").Output()
		if err != nil {
			continue
		}
		// Output is e.g. "Python 3.11.4\n"
		raw := strings.TrimPrefix(strings.TrimSpace(string(out)), "Python ")
		if raw != "" {
			return raw, nil
		}
	}

	return "", errors.New("python3/python not found on PATH")
}

