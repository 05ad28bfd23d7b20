package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/go-native-tts/internal/model"
	"github.com/example/go-native-tts/internal/tts"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the model is installed and loaded",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLocal(cmd.Context(), cmd.OutOrStdout(), tts.MethodStatus, nil)
		},
	}
}

func newInstallCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download, verify and load the TTS model",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := openLocal(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			done := make(chan struct{})
			if !quiet {
				go watchProgress(ctx, s, cmd.ErrOrStderr(), done)
			}

			res, err := s.call(ctx, tts.MethodInstall, nil)
			close(done)
			if err != nil {
				return err
			}
			return printEnvelope(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "Do not print download progress")

	return cmd
}

// watchProgress polls install_progress until done is closed.
func watchProgress(ctx context.Context, s *localSession, w io.Writer, done <-chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var last model.Progress
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		res, err := s.call(ctx, tts.MethodInstallProgress, nil)
		if err != nil || !res.OK {
			continue
		}
		p, ok := res.Result.(model.Progress)
		if !ok || p == last {
			continue
		}
		last = p
		_, _ = fmt.Fprintln(w, formatProgress(p))
	}
}

func formatProgress(p model.Progress) string {
	const mb = 1 << 20
	if p.TotalBytes == 0 {
		return fmt.Sprintf("%s %s: %.1f MB", p.Status, p.Phase, float64(p.DownloadedBytes)/mb)
	}
	pct := float64(p.DownloadedBytes) / float64(p.TotalBytes) * 100
	return fmt.Sprintf("%s %s: %.1f/%.1f MB (%.0f%%)", p.Status, p.Phase,
		float64(p.DownloadedBytes)/mb, float64(p.TotalBytes)/mb, pct)
}

type synthPayload struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

func newSynthCmd() *cobra.Command {
	var (
		text  string
		voice string
		speed float64
		out   string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize text into a cached WAV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			if text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := openLocal(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			res, err := s.call(ctx, tts.MethodSynthesize, synthPayload{Text: text, Voice: voice, Speed: speed})
			if err != nil {
				return err
			}
			if err := printEnvelope(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if out == "" {
				return nil
			}

			sr, ok := res.Result.(tts.SynthesisResult)
			if !ok {
				return errors.New("unexpected synthesize result")
			}
			return exportAudio(ctx, s, sr.Path, out)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize (\"-\" reads stdin)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice preset id (default af_sky)")
	cmd.Flags().Float64Var(&speed, "speed", 0, "Speaking rate (default 1)")
	cmd.Flags().StringVar(&out, "out", "", "Also copy the WAV to this path")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

// exportAudio fetches a cached file through read_audio and writes it to dst.
func exportAudio(ctx context.Context, s *localSession, path, dst string) error {
	res, err := s.call(ctx, tts.MethodReadAudio, map[string]string{"path": path})
	if err != nil {
		return err
	}
	if err := envelopeErr(res); err != nil {
		return err
	}

	ar, ok := res.Result.(tts.AudioResult)
	if !ok {
		return errors.New("unexpected read_audio result")
	}
	data, err := base64.StdEncoding.DecodeString(ar.Base64)
	if err != nil {
		return fmt.Errorf("decode audio: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}
