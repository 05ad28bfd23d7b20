package doctor

import (
	"strings"
	"testing"
)

func TestCheckPythonVersion(t *testing.T) {
	tests := []struct {
		ver     string
		wantErr string // empty means accepted
	}{
		{ver: "3.10.0"},
		{ver: "3.11"},
		{ver: "3.14.2"},
		{ver: "3.9.18", wantErr: ">=3.10"},
		{ver: "3.15.0", wantErr: "<3.15"},
		{ver: "2.7.18", wantErr: "requires Python 3"},
		{ver: "3", wantErr: "unexpected version format"},
		{ver: "", wantErr: "unexpected version format"},
		{ver: "x.11", wantErr: "bad major"},
		{ver: "3.rc1", wantErr: "bad minor"},
	}

	for _, tt := range tests {
		t.Run(tt.ver, func(t *testing.T) {
			err := checkPythonVersion(tt.ver)
			switch {
			case tt.wantErr == "" && err != nil:
				t.Fatalf("checkPythonVersion(%q) = %v, want nil", tt.ver, err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Fatalf("checkPythonVersion(%q) = %v, want error containing %q", tt.ver, err, tt.wantErr)
			}
		})
	}
}

func TestParseMajorMinor_IgnoresPatch(t *testing.T) {
	major, minor, err := parseMajorMinor("3.12.1+local")
	if err != nil || major != 3 || minor != 12 {
		t.Fatalf("parseMajorMinor = (%d, %d, %v), want (3, 12, nil)", major, minor, err)
	}
}
