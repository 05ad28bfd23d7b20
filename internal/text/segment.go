package text

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Sentence is one UAX #29 sentence of the input with its position.
// Text keeps trailing whitespace exactly as it appears in the source.
type Sentence struct {
	Text      string
	ByteStart int
	// CharStart and CharLen count Unicode scalar values, not bytes.
	CharStart int
	CharLen   int
}

// CharEnd is the exclusive end offset in scalar values.
func (s Sentence) CharEnd() int {
	return s.CharStart + s.CharLen
}

// Blank reports whether the sentence has nothing to speak.
func (s Sentence) Blank() bool {
	return strings.TrimSpace(s.Text) == ""
}

// Sentences splits s at Unicode sentence boundaries. The returned sentences
// cover s completely and in order, including whitespace-only pieces.
func Sentences(s string) []Sentence {
	var (
		out       []Sentence
		sentence  string
		byteStart int
		charStart int
		state     = -1
	)

	rest := s
	for len(rest) > 0 {
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		n := utf8.RuneCountInString(sentence)
		out = append(out, Sentence{
			Text:      sentence,
			ByteStart: byteStart,
			CharStart: charStart,
			CharLen:   n,
		})
		byteStart += len(sentence)
		charStart += n
	}

	return out
}
