package audio

import (
	"math"
	"testing"
)

func TestQuantize(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{name: "zero", in: 0, want: 0},
		{name: "full scale", in: 1, want: 32767.0 / 32768},
		{name: "negative full scale", in: -1, want: -32767.0 / 32768},
		{name: "clamps above", in: 1.7, want: 32767.0 / 32768},
		{name: "clamps below", in: -4, want: -32767.0 / 32768},
		{name: "truncates toward zero", in: -0.9999, want: -32763.0 / 32768},
		{name: "half scale", in: 0.5, want: 16383.0 / 32768},
		{name: "nan becomes silence", in: float32(math.NaN()), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantize([]float32{tt.in})[0]
			if got != tt.want {
				t.Errorf("Quantize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestQuantize_DoesNotMutateInput(t *testing.T) {
	in := []float32{2, -2}
	_ = Quantize(in)
	if in[0] != 2 || in[1] != -2 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestSilence(t *testing.T) {
	if got := len(Silence(100)); got != 2400 {
		t.Errorf("len(Silence(100)) = %d, want 2400", got)
	}
	for i, s := range Silence(10) {
		if s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
}

func TestDurationMS(t *testing.T) {
	if got := DurationMS(24000); got != 1000 {
		t.Errorf("DurationMS(24000) = %v, want 1000", got)
	}
	if got := DurationMS(1000); math.Abs(got-41.6666666) > 1e-4 {
		t.Errorf("DurationMS(1000) = %v, want ~41.667", got)
	}
}
