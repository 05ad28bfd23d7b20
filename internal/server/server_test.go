package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/go-native-tts/internal/plugin"
	"github.com/example/go-native-tts/internal/server"
)

// echoPlugin answers "echo" with its payload and "fail" with a coded error.
type echoPlugin struct{}

func (echoPlugin) ID() string { return "test.echo" }

func (echoPlugin) Activate(plugin.Context) (*plugin.Active, error) {
	return &plugin.Active{Instance: echoInstance{}}, nil
}

func (echoPlugin) Deactivate(*plugin.Active) error { return nil }

type echoInstance struct{}

func (echoInstance) Invoke(ctx context.Context, method string, payload json.RawMessage) (any, error) {
	switch method {
	case "echo":
		return payload, nil
	case "wait":
		<-ctx.Done()
		return nil, ctx.Err()
	case "fail":
		return nil, &plugin.Error{Code: plugin.CodeInvalidPayload, Message: "bad input"}
	default:
		return nil, errors.New("unexpected method " + method)
	}
}

func newTestRegistry(t *testing.T) *plugin.Registry {
	t.Helper()
	r := plugin.NewRegistry(t.TempDir(), nil)
	r.Register(echoPlugin{})
	return r
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) plugin.InvokeResult {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	var res plugin.InvokeResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return res
}

// ---------------------------------------------------------------------------
// GET /health
// ---------------------------------------------------------------------------

func TestHealth_Returns200WithStatusOK(t *testing.T) {
	h := server.NewHandler(newTestRegistry(t))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("want status=ok, got %q", body["status"])
	}
	if _, ok := body["version"]; !ok {
		t.Error("want version field in response")
	}
}

// ---------------------------------------------------------------------------
// plugin lifecycle
// ---------------------------------------------------------------------------

func TestPlugins_ActivateAndDeactivate(t *testing.T) {
	reg := newTestRegistry(t)
	h := server.NewHandler(reg)

	rec := post(t, h, "/plugins/activate", `{"plugin_id":"test.echo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: want 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !reg.IsActive("test.echo") {
		t.Fatal("plugin not active after activate")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins", nil))
	var list []struct {
		ID     string `json:"id"`
		Active bool   `json:"active"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode /plugins: %v", err)
	}
	if len(list) != 1 || list[0].ID != "test.echo" || !list[0].Active {
		t.Errorf("/plugins = %+v", list)
	}

	rec = post(t, h, "/plugins/deactivate", `{"plugin_id":"test.echo"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deactivate: want 200, got %d", rec.Code)
	}
	if reg.IsActive("test.echo") {
		t.Error("plugin still active after deactivate")
	}
}

func TestPlugins_ActivateErrors(t *testing.T) {
	h := server.NewHandler(newTestRegistry(t))

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown plugin", `{"plugin_id":"nope"}`, http.StatusNotFound},
		{"missing id", `{}`, http.StatusBadRequest},
		{"malformed", `{"plugin_id":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/plugins/activate", tt.body)
			if rec.Code != tt.want {
				t.Errorf("want %d, got %d", tt.want, rec.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plugins/activate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /plugins/activate: want 405, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /invoke
// ---------------------------------------------------------------------------

func TestInvoke_SuccessEnvelope(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Activate("test.echo"); err != nil {
		t.Fatal(err)
	}
	h := server.NewHandler(reg)

	rec := post(t, h, "/invoke", `{"request_id":"r-1","plugin_id":"test.echo","method":"echo","payload":{"x":1}}`)
	res := decodeEnvelope(t, rec)

	if !res.OK || res.RequestID != "r-1" || res.Error != nil {
		t.Fatalf("envelope = %+v", res)
	}
	if got := rec.Header().Get(server.RequestIDHeader); got != "r-1" {
		t.Errorf("%s = %q", server.RequestIDHeader, got)
	}
	m, ok := res.Result.(map[string]any)
	if !ok || m["x"] != float64(1) {
		t.Errorf("result = %#v", res.Result)
	}
}

func TestInvoke_ErrorEnvelopes(t *testing.T) {
	reg := newTestRegistry(t)
	h := server.NewHandler(reg)

	res := decodeEnvelope(t, post(t, h, "/invoke", `{"plugin_id":"test.echo","method":"echo"}`))
	if res.OK || res.Error == nil || res.Error.Code != plugin.CodeNotActive {
		t.Errorf("inactive plugin: %+v", res)
	}

	res = decodeEnvelope(t, post(t, h, "/invoke", `{"plugin_id":"ghost","method":"echo"}`))
	if res.OK || res.Error.Code != plugin.CodeNotFound {
		t.Errorf("unknown plugin: %+v", res.Error)
	}

	if err := reg.Activate("test.echo"); err != nil {
		t.Fatal(err)
	}
	res = decodeEnvelope(t, post(t, h, "/invoke", `{"plugin_id":"test.echo","method":"fail"}`))
	if res.OK || res.Error.Code != plugin.CodeInvalidPayload || res.Error.Message != "bad input" {
		t.Errorf("coded failure: %+v", res.Error)
	}
	if res.Result != nil {
		t.Errorf("failure envelope carries a result: %#v", res.Result)
	}
}

func TestInvoke_RequestIDs(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Activate("test.echo"); err != nil {
		t.Fatal(err)
	}
	h := server.NewHandler(reg, server.WithRequestIDFunc(func() string { return "minted" }))

	res := decodeEnvelope(t, post(t, h, "/invoke", `{"plugin_id":"test.echo","method":"echo"}`))
	if res.RequestID != "minted" {
		t.Errorf("request_id = %q, want minted", res.RequestID)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invoke", bytes.NewBufferString(`{"plugin_id":"test.echo","method":"echo"}`))
	req.Header.Set(server.RequestIDHeader, "from-header")
	h.ServeHTTP(rec, req)
	if res := decodeEnvelope(t, rec); res.RequestID != "from-header" {
		t.Errorf("request_id = %q, want from-header", res.RequestID)
	}
}

func TestInvoke_DefaultRequestIDIsUUID(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Activate("test.echo"); err != nil {
		t.Fatal(err)
	}
	h := server.NewHandler(reg)

	a := decodeEnvelope(t, post(t, h, "/invoke", `{"plugin_id":"test.echo","method":"echo"}`))
	b := decodeEnvelope(t, post(t, h, "/invoke", `{"plugin_id":"test.echo","method":"echo"}`))
	if len(a.RequestID) != 36 || a.RequestID == b.RequestID {
		t.Errorf("minted ids %q and %q", a.RequestID, b.RequestID)
	}
}

func TestInvoke_BadRequests(t *testing.T) {
	h := server.NewHandler(newTestRegistry(t))

	tests := []struct {
		name string
		body string
	}{
		{"missing method", `{"plugin_id":"test.echo"}`},
		{"missing plugin", `{"method":"echo"}`},
		{"malformed", `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, "/invoke", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d", rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if body["error"] == "" {
				t.Error("want non-empty error field")
			}
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoke", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /invoke: want 405, got %d", rec.Code)
	}
}
