package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/go-native-tts/internal/bench"
	"github.com/example/go-native-tts/internal/tts"
)

func newBenchCmd() *cobra.Command {
	var (
		text         string
		voice        string
		speed        float64
		runs         int
		format       string
		rtfThreshold float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark synthesis latency and realtime factor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(text) == "" {
				return errors.New("--text is required for bench")
			}
			if format != "table" && format != "json" {
				return errors.New("--format must be 'table' or 'json'")
			}

			s, err := openLocal(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			payload := synthPayload{Text: text, Voice: voice, Speed: speed}
			results, err := bench.Run(cmd.Context(), runs, func(ctx context.Context) (bench.Sample, error) {
				return benchOnce(ctx, s, payload)
			})
			if err != nil {
				return err
			}

			stats := bench.Summarize(results)
			out := cmd.OutOrStdout()
			if format == "json" {
				err = bench.FormatJSON(results, stats, out)
			} else {
				err = bench.FormatTable(results, stats, out)
			}
			if err != nil {
				return err
			}

			return bench.CheckRTFThreshold(stats.MeanRTF, rtfThreshold)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize for each run (required)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice preset id")
	cmd.Flags().Float64Var(&speed, "speed", 0, "Speaking rate (default 1)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of synthesis runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&rtfThreshold, "rtf-threshold", 0, "Exit non-zero if mean RTF exceeds this value (0 = disabled)")

	return cmd
}

// benchOnce runs one synthesize call. The first call also loads the engine.
func benchOnce(ctx context.Context, s *localSession, payload synthPayload) (bench.Sample, error) {
	res, err := s.call(ctx, tts.MethodSynthesize, payload)
	if err != nil {
		return bench.Sample{}, err
	}
	if err := envelopeErr(res); err != nil {
		return bench.Sample{}, err
	}

	sr, ok := res.Result.(tts.SynthesisResult)
	if !ok {
		return bench.Sample{}, fmt.Errorf("unexpected synthesize result %T", res.Result)
	}
	return bench.Sample{
		Audio:    time.Duration(sr.DurationMS * float64(time.Millisecond)),
		Segments: len(sr.Segments),
	}, nil
}
