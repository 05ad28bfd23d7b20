package onnx

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []int64
	}{
		{name: "empty", in: "", want: []int64{}},
		{name: "only spaces", in: "   \t\n", want: []int64{}},
		{name: "lowercase word", in: "hi", want: []int64{50, 51}},
		{name: "uppercase folds", in: "Hi", want: []int64{50, 51}},
		{name: "g maps to script g", in: "go", want: []int64{92, 57}},
		{name: "punctuation kept", in: "a, b!", want: []int64{43, 3, 16, 44, 5}},
		{name: "whitespace collapses", in: "a  \n b", want: []int64{43, 16, 44}},
		{name: "unknown dropped", in: "a#1b", want: []int64{43, 44}},
		{name: "ipa passthrough", in: "ðə", want: []int64{81, 83}},
		{name: "trailing space trimmed", in: "a ", want: []int64{43}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenizeTruncates(t *testing.T) {
	in := make([]byte, MaxTokens+50)
	for i := range in {
		in[i] = 'a'
	}

	if got := len(Tokenize(string(in))); got != MaxTokens {
		t.Fatalf("len(Tokenize) = %d, want %d", got, MaxTokens)
	}
}

func TestPadTokens(t *testing.T) {
	got := padTokens([]int64{43, 44})
	want := []int64{0, 43, 44, 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("padTokens = %v, want %v", got, want)
	}
}
