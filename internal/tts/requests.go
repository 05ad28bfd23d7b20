package tts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/plugin"
	"github.com/example/go-native-tts/internal/text"
)

// Method names accepted by Instance.Invoke.
const (
	MethodStatus          = "status"
	MethodInstall         = "install"
	MethodInstallProgress = "install_progress"
	MethodSynthesize      = "synthesize"
	MethodCancel          = "cancel"
	MethodCacheStats      = "cache_stats"
	MethodClearCache      = "clear_cache"
	MethodRemoveModel     = "remove_model"
	MethodImportLocal     = "import_local"
	MethodReadAudio       = "read_audio"
	MethodModelDir        = "model_dir"
)

// Request is one of the request types below. The set is closed.
type Request interface {
	Method() string
	request()
}

type (
	StatusRequest          struct{}
	InstallRequest         struct{}
	InstallProgressRequest struct{}
	CancelRequest          struct{}
	CacheStatsRequest      struct{}
	ClearCacheRequest      struct{}
	RemoveModelRequest     struct{}
	ModelDirRequest        struct{}

	SynthesizeRequest struct {
		Text  string
		Voice string
		Speed float32
	}

	ImportLocalRequest struct {
		Path string
	}

	ReadAudioRequest struct {
		Path string
	}
)

func (StatusRequest) Method() string          { return MethodStatus }
func (InstallRequest) Method() string         { return MethodInstall }
func (InstallProgressRequest) Method() string { return MethodInstallProgress }
func (SynthesizeRequest) Method() string      { return MethodSynthesize }
func (CancelRequest) Method() string          { return MethodCancel }
func (CacheStatsRequest) Method() string      { return MethodCacheStats }
func (ClearCacheRequest) Method() string      { return MethodClearCache }
func (RemoveModelRequest) Method() string     { return MethodRemoveModel }
func (ImportLocalRequest) Method() string     { return MethodImportLocal }
func (ReadAudioRequest) Method() string       { return MethodReadAudio }
func (ModelDirRequest) Method() string        { return MethodModelDir }

func (StatusRequest) request()          {}
func (InstallRequest) request()         {}
func (InstallProgressRequest) request() {}
func (SynthesizeRequest) request()      {}
func (CancelRequest) request()          {}
func (CacheStatsRequest) request()      {}
func (ClearCacheRequest) request()      {}
func (RemoveModelRequest) request()     {}
func (ImportLocalRequest) request()     {}
func (ReadAudioRequest) request()       {}
func (ModelDirRequest) request()        {}

// ParseRequest decodes a method name and JSON payload into a Request.
// Methods without arguments ignore the payload.
func ParseRequest(method string, payload json.RawMessage) (Request, error) {
	switch method {
	case MethodStatus:
		return StatusRequest{}, nil
	case MethodInstall:
		return InstallRequest{}, nil
	case MethodInstallProgress:
		return InstallProgressRequest{}, nil
	case MethodCancel:
		return CancelRequest{}, nil
	case MethodCacheStats:
		return CacheStatsRequest{}, nil
	case MethodClearCache:
		return ClearCacheRequest{}, nil
	case MethodRemoveModel:
		return RemoveModelRequest{}, nil
	case MethodModelDir:
		return ModelDirRequest{}, nil
	case MethodSynthesize:
		return parseSynthesize(payload)
	case MethodImportLocal:
		p, err := parsePath(payload)
		return ImportLocalRequest{Path: p}, err
	case MethodReadAudio:
		p, err := parsePath(payload)
		return ReadAudioRequest{Path: p}, err
	default:
		return nil, &plugin.Error{
			Code:    plugin.CodeUnknownMethod,
			Message: fmt.Sprintf("Method %s not found", method),
		}
	}
}

func parseSynthesize(payload json.RawMessage) (Request, error) {
	var raw struct {
		Text  *string  `json:"text"`
		Voice *string  `json:"voice"`
		Speed *float64 `json:"speed"`
	}
	if err := decodePayload(payload, &raw); err != nil {
		return nil, err
	}

	if raw.Text == nil {
		return nil, invalidPayload("Missing text")
	}
	if err := text.CheckText(*raw.Text); err != nil {
		return nil, invalidPayload("Text is empty")
	}

	req := SynthesizeRequest{Text: *raw.Text, Voice: engine.DefaultVoiceID, Speed: 1}
	if raw.Voice != nil && *raw.Voice != "" {
		req.Voice = *raw.Voice
	}
	if raw.Speed != nil {
		s := *raw.Speed
		if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 || s > math.MaxFloat32 {
			return nil, invalidPayload("Speed must be a positive number")
		}
		req.Speed = float32(s)
	}

	return req, nil
}

func parsePath(payload json.RawMessage) (string, error) {
	var raw struct {
		Path *string `json:"path"`
	}
	if err := decodePayload(payload, &raw); err != nil {
		return "", err
	}
	if raw.Path == nil || strings.TrimSpace(*raw.Path) == "" {
		return "", invalidPayload("Missing path")
	}
	return *raw.Path, nil
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &plugin.Error{
			Code:    plugin.CodeInvalidPayload,
			Message: "Invalid payload: " + err.Error(),
			Err:     err,
		}
	}
	return nil
}

func invalidPayload(msg string) error {
	return &plugin.Error{Code: plugin.CodeInvalidPayload, Message: msg}
}
