// Package bench measures synthesis latency and realtime factor across
// repeated runs of the same request.
package bench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// RunResult is the timing of one synthesis.
type RunResult struct {
	Index    int
	Cold     bool // first run; includes engine load
	Duration time.Duration
	Audio    time.Duration
	Segments int
	RTF      float64
}

// Stats aggregates a set of runs.
type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Mean    time.Duration
	MeanRTF float64
}

// Sample is what one synthesis reports back to the harness.
type Sample struct {
	Audio    time.Duration
	Segments int
}

// SynthFunc performs one synthesis.
type SynthFunc func(ctx context.Context) (Sample, error)

// Run calls fn n times in sequence and records each call.
func Run(ctx context.Context, n int, fn SynthFunc) ([]RunResult, error) {
	if n < 1 {
		return nil, errors.New("runs must be at least 1")
	}

	results := make([]RunResult, 0, n)
	for i := range n {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := time.Now()
		s, err := fn(ctx)
		if err != nil {
			return results, fmt.Errorf("run %d failed: %w", i+1, err)
		}
		dur := time.Since(start)

		results = append(results, RunResult{
			Index:    i,
			Cold:     i == 0,
			Duration: dur,
			Audio:    s.Audio,
			Segments: s.Segments,
			RTF:      CalcRTF(dur, s.Audio),
		})
	}
	return results, nil
}

// Summarize computes min, max and mean wall time plus the mean RTF.
func Summarize(runs []RunResult) Stats {
	if len(runs) == 0 {
		return Stats{}
	}

	st := Stats{Min: runs[0].Duration, Max: runs[0].Duration}
	var (
		sum    time.Duration
		rtfSum float64
	)
	for _, r := range runs {
		st.Min = min(st.Min, r.Duration)
		st.Max = max(st.Max, r.Duration)
		sum += r.Duration
		rtfSum += r.RTF
	}
	st.Mean = sum / time.Duration(len(runs))
	st.MeanRTF = rtfSum / float64(len(runs))
	return st
}

// CalcRTF returns synthesis time over audio time, or 0 for silent output.
func CalcRTF(synthDur, audioDur time.Duration) float64 {
	if audioDur <= 0 {
		return 0
	}
	return float64(synthDur) / float64(audioDur)
}

// CheckRTFThreshold fails when meanRTF exceeds threshold. Zero disables it.
func CheckRTFThreshold(meanRTF, threshold float64) error {
	if threshold <= 0 {
		return nil
	}
	if meanRTF > threshold {
		return fmt.Errorf("mean RTF %.3f exceeds threshold %.3f", meanRTF, threshold)
	}
	return nil
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// FormatTable writes an aligned text table to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) error {
	sb := &strings.Builder{}
	rule := strings.Repeat("-", 56)

	fmt.Fprintf(sb, "%-5s  %-5s  %10s  %12s  %5s  %8s\n", "Run", "Cold", "MS", "Audio(ms)", "Segs", "RTF")
	fmt.Fprintln(sb, rule)
	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %10.1f  %12.1f  %5d  %8.3f\n",
			r.Index+1, cold, ms(r.Duration), ms(r.Audio), r.Segments, r.RTF)
	}
	fmt.Fprintln(sb, rule)
	fmt.Fprintf(sb, "min %.1f ms  mean %.1f ms  max %.1f ms  mean RTF %.3f\n",
		ms(stats.Min), ms(stats.Mean), ms(stats.Max), stats.MeanRTF)

	_, err := io.WriteString(w, sb.String())
	return err
}

type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	DurationMS float64 `json:"duration_ms"`
	AudioMS    float64 `json:"audio_ms"`
	Segments   int     `json:"segments"`
	RTF        float64 `json:"rtf"`
}

type jsonStats struct {
	MinMS   float64 `json:"min_ms"`
	MeanMS  float64 `json:"mean_ms"`
	MaxMS   float64 `json:"max_ms"`
	MeanRTF float64 `json:"mean_rtf"`
}

// FormatJSON writes an indented JSON report to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) error {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:   ms(stats.Min),
			MeanMS:  ms(stats.Mean),
			MaxMS:   ms(stats.Max),
			MeanRTF: stats.MeanRTF,
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			DurationMS: ms(r.Duration),
			AudioMS:    ms(r.Audio),
			Segments:   r.Segments,
			RTF:        r.RTF,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jr)
}
