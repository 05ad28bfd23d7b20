// Package engine defines the contract between the synthesis pipeline and a
// loaded neural TTS engine. Engines are opaque: they turn one sentence into
// mono float32 PCM at audio.SampleRate.
package engine

import (
	"context"
	"errors"
)

// ErrCorrupt marks failures caused by malformed model or voice data, as
// opposed to environmental problems such as a missing runtime library.
var ErrCorrupt = errors.New("model data is corrupt")

// Engine synthesizes single sentences. Implementations need not be safe for
// concurrent use; callers serialize access.
type Engine interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]float32, error)
	Close() error
}

// Loader builds an Engine from the two installed assets.
type Loader interface {
	Load(ctx context.Context, modelPath, voicesPath string) (Engine, error)
}
