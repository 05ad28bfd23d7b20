package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/example/go-native-tts/internal/config"
	"github.com/example/go-native-tts/internal/plugin"
)

type pingPlugin struct{}

func (pingPlugin) ID() string { return "test.ping" }

func (pingPlugin) Activate(plugin.Context) (*plugin.Active, error) {
	return &plugin.Active{Instance: pingInstance{}}, nil
}

func (pingPlugin) Deactivate(*plugin.Active) error { return nil }

type pingInstance struct{}

func (pingInstance) Invoke(context.Context, string, json.RawMessage) (any, error) {
	return "pong", nil
}

func TestStart_LifecycleHealthInvokeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	cfg := config.DefaultConfig().Server
	cfg.ListenAddr = addr

	reg := plugin.NewRegistry(t.TempDir(), nil)
	reg.Register(pingPlugin{})
	if err := reg.Activate("test.ping"); err != nil {
		t.Fatal(err)
	}

	s := New(cfg, reg, nil).WithShutdownTimeout(2 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start(ctx)
	}()

	client := &http.Client{Timeout: 2 * time.Second}

	var resp *http.Response
	for range 50 {
		resp, err = client.Get(fmt.Sprintf("http://%s/health", addr))
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never became ready: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health status = %d; want 200", resp.StatusCode)
	}

	resp, err = client.Post(fmt.Sprintf("http://%s/invoke", addr), "application/json",
		bytes.NewBufferString(`{"plugin_id":"test.ping","method":"ping"}`))
	if err != nil {
		t.Fatalf("POST /invoke: %v", err)
	}
	var res plugin.InvokeResult
	err = json.NewDecoder(resp.Body).Decode(&res)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !res.OK || res.Result != "pong" || res.RequestID == "" {
		t.Errorf("envelope = %+v", res)
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Start() returned error on shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return within 5s of context cancel")
	}
}

func TestStart_ListenErrorIsReturned(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := config.DefaultConfig().Server
	cfg.ListenAddr = ln.Addr().String()

	s := New(cfg, plugin.NewRegistry(t.TempDir(), nil), nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("Start() = nil; want listen error for a busy port")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not fail on a busy port")
	}
}
