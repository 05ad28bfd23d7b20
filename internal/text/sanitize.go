package text

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// punctuation maps typographic and full-width punctuation onto the ASCII
// forms the engine's vocabulary covers.
var punctuation = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", "\"",
	"”", "\"",
	"—", "-",
	"–", "-",
	"…", "...",
	"«", "(",
	"»", ")",
	"，", ",",
	"。", ".",
	"！", "!",
	"？", "?",
	"：", ":",
	"；", ";",
)

// CheckText rejects empty or whitespace-only input.
func CheckText(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyText
	}
	return nil
}

// Sanitize prepares a single sentence for the engine: NFC composition,
// smart punctuation folded to ASCII, surrounding whitespace trimmed.
// Offsets are never computed on sanitized text.
func Sanitize(sentence string) string {
	s := norm.NFC.String(sentence)
	s = punctuation.Replace(s)
	return strings.TrimSpace(s)
}
