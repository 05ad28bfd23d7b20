package audio

import "math"

// pcmScale is the divisor the WAV encoder multiplies samples back by.
const pcmScale = 32768

// Quantize clamps samples to [-1, 1] and maps each to the 16-bit value
// int16(s * math.MaxInt16), truncated toward zero. The result is expressed
// on the encoder's 1/32768 grid so encoding reproduces that value exactly
// for both signs and the output is deterministic for equal input.
func Quantize(samples []float32) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		c := math.Max(-1.0, math.Min(1.0, float64(s)))
		if math.IsNaN(c) {
			c = 0
		}
		out[i] = float32(int16(c*math.MaxInt16)) / pcmScale
	}
	return out
}

// Silence returns ms milliseconds of zero samples at SampleRate.
func Silence(ms float64) []float32 {
	return make([]float32, SilenceSamples(ms))
}

// SilenceSamples is the number of samples covering ms milliseconds.
func SilenceSamples(ms float64) int {
	return int(SampleRate * ms / 1000)
}

// DurationMS converts a sample count at SampleRate into milliseconds.
func DurationMS(samples int) float64 {
	return float64(samples) / SampleRate * 1000
}
