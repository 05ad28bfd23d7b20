package tts

import (
	"encoding/json"
	"testing"

	"github.com/example/go-native-tts/internal/engine"
	"github.com/example/go-native-tts/internal/plugin"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		payload string
		want    Request
		code    string
		message string
	}{
		{name: "status", method: "status", want: StatusRequest{}},
		{name: "status ignores payload", method: "status", payload: `{"anything":1}`, want: StatusRequest{}},
		{name: "install", method: "install", want: InstallRequest{}},
		{name: "install progress", method: "install_progress", want: InstallProgressRequest{}},
		{name: "cancel", method: "cancel", want: CancelRequest{}},
		{name: "cache stats", method: "cache_stats", want: CacheStatsRequest{}},
		{name: "clear cache", method: "clear_cache", want: ClearCacheRequest{}},
		{name: "remove model", method: "remove_model", want: RemoveModelRequest{}},
		{name: "model dir", method: "model_dir", want: ModelDirRequest{}},
		{
			name:    "synthesize defaults",
			method:  "synthesize",
			payload: `{"text":"Hello."}`,
			want:    SynthesizeRequest{Text: "Hello.", Voice: engine.DefaultVoiceID, Speed: 1},
		},
		{
			name:    "synthesize full",
			method:  "synthesize",
			payload: `{"text":"Hello.","voice":"bm_lewis","speed":1.25}`,
			want:    SynthesizeRequest{Text: "Hello.", Voice: "bm_lewis", Speed: 1.25},
		},
		{
			name:    "synthesize empty voice uses default",
			method:  "synthesize",
			payload: `{"text":"Hello.","voice":""}`,
			want:    SynthesizeRequest{Text: "Hello.", Voice: engine.DefaultVoiceID, Speed: 1},
		},
		{name: "synthesize missing text", method: "synthesize", payload: `{"voice":"af_sky"}`, code: plugin.CodeInvalidPayload, message: "Missing text"},
		{name: "synthesize no payload", method: "synthesize", code: plugin.CodeInvalidPayload, message: "Missing text"},
		{name: "synthesize blank text", method: "synthesize", payload: `{"text":"  \n "}`, code: plugin.CodeInvalidPayload, message: "Text is empty"},
		{name: "synthesize zero speed", method: "synthesize", payload: `{"text":"a","speed":0}`, code: plugin.CodeInvalidPayload},
		{name: "synthesize negative speed", method: "synthesize", payload: `{"text":"a","speed":-1}`, code: plugin.CodeInvalidPayload},
		{name: "synthesize huge speed", method: "synthesize", payload: `{"text":"a","speed":1e300}`, code: plugin.CodeInvalidPayload},
		{name: "synthesize text wrong type", method: "synthesize", payload: `{"text":42}`, code: plugin.CodeInvalidPayload},
		{name: "synthesize malformed", method: "synthesize", payload: `{"text":`, code: plugin.CodeInvalidPayload},
		{name: "import local", method: "import_local", payload: `{"path":"/tmp/kokoro"}`, want: ImportLocalRequest{Path: "/tmp/kokoro"}},
		{name: "import missing path", method: "import_local", payload: `{}`, code: plugin.CodeInvalidPayload, message: "Missing path"},
		{name: "read audio", method: "read_audio", payload: `{"path":"abc.wav"}`, want: ReadAudioRequest{Path: "abc.wav"}},
		{name: "read audio blank path", method: "read_audio", payload: `{"path":" "}`, code: plugin.CodeInvalidPayload, message: "Missing path"},
		{name: "unknown", method: "explode", code: plugin.CodeUnknownMethod, message: "Method explode not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequest(tt.method, json.RawMessage(tt.payload))
			if tt.code != "" {
				pe := requireCode(t, err, tt.code)
				if tt.message != "" && pe.Message != tt.message {
					t.Errorf("message = %q, want %q", pe.Message, tt.message)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRequest: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
			if got.Method() != tt.method {
				t.Errorf("Method() = %q, want %q", got.Method(), tt.method)
			}
		})
	}
}
