package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/go-native-tts/internal/config"
	"github.com/example/go-native-tts/internal/plugin"
)

// RequestIDHeader carries a caller-chosen request id. The body field wins
// when both are set.
const RequestIDHeader = "X-Request-ID"

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Registry is the part of plugin.Registry the host exposes.
type Registry interface {
	Call(ctx context.Context, requestID, id, method string, payload json.RawMessage) plugin.InvokeResult
	Activate(id string) error
	Deactivate(id string) error
	IsActive(id string) bool
	IDs() []string
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxBodyBytes int64
	logger       *slog.Logger
	newRequestID func() string
}

func defaultOptions() options {
	return options{
		maxBodyBytes: 1 << 20,
		logger:       slog.Default(),
		newRequestID: uuid.NewString,
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxBodyBytes caps the size of JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) { o.maxBodyBytes = n }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRequestIDFunc overrides how ids are minted for requests that carry none.
func WithRequestIDFunc(fn func() string) Option {
	return func(o *options) { o.newRequestID = fn }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

type handler struct {
	reg  Registry
	opts options
	log  *slog.Logger
}

// NewHandler returns an http.Handler that serves /health, /plugins,
// /plugins/activate, /plugins/deactivate and POST /invoke.
func NewHandler(reg Registry, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}

	h := &handler{reg: reg, opts: opts, log: opts.logger}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/plugins", h.handlePlugins)
	mux.HandleFunc("/plugins/activate", h.handleActivate)
	mux.HandleFunc("/plugins/deactivate", h.handleDeactivate)
	mux.HandleFunc("/invoke", h.handleInvoke)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type pluginInfo struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

func (h *handler) handlePlugins(w http.ResponseWriter, _ *http.Request) {
	ids := h.reg.IDs()
	out := make([]pluginInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, pluginInfo{ID: id, Active: h.reg.IsActive(id)})
	}
	writeJSON(w, http.StatusOK, out)
}

type lifecycleRequest struct {
	PluginID string `json:"plugin_id"`
}

func (h *handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	h.handleLifecycle(w, r, "activated", h.reg.Activate)
}

func (h *handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.handleLifecycle(w, r, "deactivated", h.reg.Deactivate)
}

func (h *handler) handleLifecycle(w http.ResponseWriter, r *http.Request, done string, fn func(string) error) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req lifecycleRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.PluginID == "" {
		writeError(w, http.StatusBadRequest, "plugin_id field is required")
		return
	}

	if err := fn(req.PluginID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, plugin.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.log.WarnContext(r.Context(), "plugin lifecycle failed",
			slog.String("plugin", req.PluginID),
			slog.String("error", err.Error()),
		)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": done, "plugin_id": req.PluginID})
}

type invokeRequest struct {
	RequestID string          `json:"request_id"`
	PluginID  string          `json:"plugin_id"`
	Method    string          `json:"method"`
	Payload   json.RawMessage `json:"payload"`
}

// handleInvoke answers every well-formed call with 200 and an envelope;
// plugin failures are reported inside it, not through the status code.
func (h *handler) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req invokeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.PluginID == "" || req.Method == "" {
		writeError(w, http.StatusBadRequest, "plugin_id and method fields are required")
		return
	}

	if req.RequestID == "" {
		req.RequestID = r.Header.Get(RequestIDHeader)
	}
	if req.RequestID == "" {
		req.RequestID = h.opts.newRequestID()
	}

	res := h.reg.Call(r.Context(), req.RequestID, req.PluginID, req.Method, req.Payload)
	w.Header().Set(RequestIDHeader, req.RequestID)
	writeJSON(w, http.StatusOK, res)
}

// decode reads a size-limited JSON body into v, writing the error response
// itself when it fails.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		writeError(w, http.StatusBadRequest, "request body is required")
		return false
	}

	body := r.Body
	if h.opts.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.opts.maxBodyBytes)
	}

	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.ServerConfig
	reg             Registry
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func New(cfg config.ServerConfig, reg Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := time.Duration(cfg.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		cfg:             cfg,
		reg:             reg,
		logger:          logger,
		shutdownTimeout: timeout,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	if s.reg == nil {
		return errors.New("server: registry is required")
	}

	h := NewHandler(s.reg,
		WithMaxBodyBytes(s.cfg.MaxBodyBytes),
		WithLogger(s.logger),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.logger.InfoContext(ctx, "host listening", slog.String("addr", s.cfg.ListenAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
