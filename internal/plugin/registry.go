package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry owns plugin descriptors for the process lifetime and tracks
// which of them are active.
type Registry struct {
	dataDir string
	logger  *slog.Logger

	mu      sync.Mutex
	plugins map[string]Plugin
	active  map[string]*Active
}

func NewRegistry(dataDir string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dataDir: dataDir,
		logger:  logger,
		plugins: make(map[string]Plugin),
		active:  make(map[string]*Active),
	}
}

// Register adds p, replacing any plugin with the same id.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.ID()] = p
}

// Activate starts the plugin. Activating an active plugin is a no-op.
func (r *Registry) Activate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.active[id]; ok {
		return nil
	}

	p, ok := r.plugins[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	a, err := p.Activate(Context{
		PluginID: id,
		DataDir:  r.dataDir,
		Logger:   r.logger.With(slog.String("plugin", id)),
	})
	if err != nil {
		return fmt.Errorf("activate plugin %s: %w", id, err)
	}

	r.active[id] = a
	r.logger.Info("plugin activated", slog.String("plugin", id))
	return nil
}

// Deactivate stops the plugin. Deactivating an inactive plugin is a no-op.
// The instance is detached under the lock and stopped after releasing it, so
// polls and calls to other plugins are not held up while it shuts down.
func (r *Registry) Deactivate(id string) error {
	r.mu.Lock()
	a, ok := r.active[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	delete(r.active, id)
	p, registered := r.plugins[id]
	r.mu.Unlock()

	if !registered {
		return fmt.Errorf("%w: %s definition missing during deactivate", ErrNotFound, id)
	}
	if err := p.Deactivate(a); err != nil {
		return fmt.Errorf("deactivate plugin %s: %w", id, err)
	}

	r.logger.Info("plugin deactivated", slog.String("plugin", id))
	return nil
}

// Invoke routes a method call to the active instance of id. The registry
// lock is released before the call so long-running methods do not block
// other plugins or polls.
func (r *Registry) Invoke(ctx context.Context, id, method string, payload json.RawMessage) (any, error) {
	r.mu.Lock()
	_, registered := r.plugins[id]
	a, active := r.active[id]
	r.mu.Unlock()

	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !active {
		return nil, fmt.Errorf("%w: %s", ErrNotActive, id)
	}

	return a.Instance.Invoke(ctx, method, payload)
}

// Call invokes a method and wraps the outcome in an envelope.
func (r *Registry) Call(ctx context.Context, requestID, id, method string, payload json.RawMessage) InvokeResult {
	start := time.Now()
	result, err := r.Invoke(ctx, id, method, payload)

	log := r.logger.With(
		slog.String("plugin", id),
		slog.String("method", method),
		slog.String("request_id", requestID),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	if err != nil {
		res := Failure(requestID, err)
		log.WarnContext(ctx, "invoke failed", slog.String("code", res.Error.Code), slog.String("error", err.Error()))
		return res
	}

	log.DebugContext(ctx, "invoke ok")
	return Success(requestID, result)
}

// IsActive reports whether id is currently active.
func (r *Registry) IsActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[id]
	return ok
}

// IDs lists registered plugin ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.plugins))
	for id := range r.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
