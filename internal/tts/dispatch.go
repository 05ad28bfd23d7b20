package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Invoke parses and runs one method call.
func (in *Instance) Invoke(ctx context.Context, method string, payload json.RawMessage) (any, error) {
	req, err := ParseRequest(method, payload)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := in.Dispatch(ctx, req)
	if err != nil {
		err = publicError(err)
		in.logger.DebugContext(ctx, "tts method failed",
			slog.String("method", method),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return res, nil
}

// Dispatch runs a parsed request.
func (in *Instance) Dispatch(ctx context.Context, req Request) (any, error) {
	switch r := req.(type) {
	case StatusRequest:
		return in.Status(), nil
	case InstallRequest:
		return in.Install(ctx)
	case InstallProgressRequest:
		return in.progress.Snapshot(), nil
	case SynthesizeRequest:
		return in.Synthesize(ctx, r)
	case CancelRequest:
		return in.Cancel(), nil
	case CacheStatsRequest:
		return in.CacheStats()
	case ClearCacheRequest:
		return in.ClearCache()
	case RemoveModelRequest:
		return in.RemoveModel(ctx)
	case ImportLocalRequest:
		return in.ImportLocal(ctx, r.Path)
	case ReadAudioRequest:
		return in.ReadAudio(r.Path)
	case ModelDirRequest:
		return PathResult{Path: in.ModelDir()}, nil
	default:
		return nil, fmt.Errorf("unhandled request %T", req)
	}
}
