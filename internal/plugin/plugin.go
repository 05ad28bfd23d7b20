// Package plugin hosts native backend plugins. A Registry activates plugins
// by id and routes method invocations to the active instance.
package plugin

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Invocable handles method calls for an active plugin. Implementations must
// be safe for concurrent use.
type Invocable interface {
	Invoke(ctx context.Context, method string, payload json.RawMessage) (any, error)
}

// Active is the handle produced by a successful activation.
type Active struct {
	Instance Invocable
}

// Context is what a plugin receives on activation.
type Context struct {
	PluginID string
	// DataDir is the application data root; plugins keep their files in a
	// subdirectory of it.
	DataDir string
	Logger  *slog.Logger
}

// Plugin describes an activatable backend.
type Plugin interface {
	ID() string
	Activate(pctx Context) (*Active, error)
	Deactivate(a *Active) error
}
