package server_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/go-native-tts/internal/plugin"
	"github.com/example/go-native-tts/internal/server"
)

func TestInvoke_OversizedBodyRejectedAs413(t *testing.T) {
	h := server.NewHandler(newTestRegistry(t), server.WithMaxBodyBytes(64))

	body := `{"plugin_id":"test.echo","method":"echo","payload":"` + strings.Repeat("x", 100) + `"}`
	rec := post(t, h, "/invoke", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("want 413, got %d", rec.Code)
	}
}

func TestInvoke_BodyAtLimitIsAccepted(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Activate("test.echo"); err != nil {
		t.Fatal(err)
	}
	body := `{"plugin_id":"test.echo","method":"echo"}`
	h := server.NewHandler(reg, server.WithMaxBodyBytes(int64(len(body))))

	if res := decodeEnvelope(t, post(t, h, "/invoke", body)); !res.OK {
		t.Fatalf("envelope = %+v", res)
	}
}

func TestInvoke_ClientCancelReachesPlugin(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Activate("test.echo"); err != nil {
		t.Fatal(err)
	}
	h := server.NewHandler(reg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/invoke",
		bytes.NewBufferString(`{"plugin_id":"test.echo","method":"wait"}`)).WithContext(ctx)
	h.ServeHTTP(rec, req)

	res := decodeEnvelope(t, rec)
	if res.OK || res.Error.Code != plugin.CodeCancelled {
		t.Errorf("envelope = %+v", res)
	}
}
