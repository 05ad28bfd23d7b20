package engine

// Preset identifiers. DefaultVoiceID is used for unknown ids.
const (
	AfSky      = "af_sky"
	AfBella    = "af_bella"
	AfNicole   = "af_nicole"
	AfSarah    = "af_sarah"
	AmAdam     = "am_adam"
	AmMichael  = "am_michael"
	BfEmma     = "bf_emma"
	BfIsabella = "bf_isabella"
	BmGeorge   = "bm_george"
	BmLewis    = "bm_lewis"

	DefaultVoiceID = AfSky
)

var presets = []string{
	AfSky, AfBella, AfNicole, AfSarah,
	AmAdam, AmMichael,
	BfEmma, BfIsabella,
	BmGeorge, BmLewis,
}

// Voice is a preset speaker together with its speed multiplier.
type Voice struct {
	ID    string
	Speed float32
}

// ResolveVoice maps id to a preset, falling back to DefaultVoiceID.
func ResolveVoice(id string, speed float32) Voice {
	for _, p := range presets {
		if p == id {
			return Voice{ID: p, Speed: speed}
		}
	}
	return Voice{ID: DefaultVoiceID, Speed: speed}
}

// Presets lists the known voice ids in a stable order.
func Presets() []string {
	return append([]string(nil), presets...)
}
