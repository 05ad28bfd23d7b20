package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/go-native-tts/internal/plugin"
	"github.com/example/go-native-tts/internal/server"
	"github.com/example/go-native-tts/internal/tts"
)

func newInvokeCmd() *cobra.Command {
	var (
		pluginID  string
		payload   string
		addr      string
		requestID string
	)

	cmd := &cobra.Command{
		Use:   "invoke <method>",
		Short: "Invoke a plugin method locally or on a running host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			raw := json.RawMessage(payload)
			if payload != "" && !json.Valid(raw) {
				return fmt.Errorf("--payload is not valid JSON")
			}
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var res plugin.InvokeResult
			if addr != "" {
				res, err = invokeRemote(ctx, addr, requestID, pluginID, args[0], raw)
				if err != nil {
					return err
				}
			} else {
				reg, err := newRegistry(cfg, slog.Default())
				if err != nil {
					return err
				}
				if err := reg.Activate(pluginID); err != nil {
					return err
				}
				defer func() { _ = reg.Deactivate(pluginID) }()
				res = reg.Call(ctx, requestID, pluginID, args[0], raw)
			}

			return printEnvelope(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&pluginID, "plugin", tts.PluginID, "Plugin id")
	cmd.Flags().StringVar(&payload, "payload", "", "JSON payload")
	cmd.Flags().StringVar(&addr, "addr", "", "Send the call to a running host at this address instead of running it in-process")
	cmd.Flags().StringVar(&requestID, "request-id", "", "Request id (default: random UUID)")

	return cmd
}

type invokeBody struct {
	RequestID string          `json:"request_id"`
	PluginID  string          `json:"plugin_id"`
	Method    string          `json:"method"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// invokeRemote posts one call to a host's /invoke endpoint.
func invokeRemote(ctx context.Context, addr, requestID, pluginID, method string, payload json.RawMessage) (plugin.InvokeResult, error) {
	body, err := json.Marshal(invokeBody{RequestID: requestID, PluginID: pluginID, Method: method, Payload: payload})
	if err != nil {
		return plugin.InvokeResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+addr+"/invoke", bytes.NewReader(body))
	if err != nil {
		return plugin.InvokeResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(server.RequestIDHeader, requestID)

	client := &http.Client{Timeout: 30 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return plugin.InvokeResult{}, fmt.Errorf("invoke %s: %w", addr, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return plugin.InvokeResult{}, fmt.Errorf("invoke %s: %s: %s", addr, resp.Status, bytes.TrimSpace(msg))
	}

	var res plugin.InvokeResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return plugin.InvokeResult{}, fmt.Errorf("decode envelope: %w", err)
	}
	return res, nil
}
