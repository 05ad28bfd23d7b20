package onnx

import "unicode"

// MaxTokens is the longest token sequence the Kokoro graph accepts,
// excluding the two pad tokens.
const MaxTokens = 510

const padToken int64 = 0

// kokoroVocab maps phoneme symbols to Kokoro v1.0 token ids.
var kokoroVocab = map[rune]int64{
	';': 1, ':': 2, ',': 3, '.': 4, '!': 5, '?': 6, '—': 9, '…': 10,
	'"': 11, '(': 12, ')': 13, '“': 14, '”': 15, ' ': 16,
	'ʣ': 18, 'ʥ': 19, 'ʦ': 20, 'ʨ': 21, 'ᵝ': 22,
	'A': 24, 'I': 25, 'O': 31, 'Q': 33, 'S': 35, 'T': 36, 'W': 39, 'Y': 41, 'ᵊ': 42,
	'a': 43, 'b': 44, 'c': 45, 'd': 46, 'e': 47, 'f': 48, 'h': 50, 'i': 51,
	'j': 52, 'k': 53, 'l': 54, 'm': 55, 'n': 56, 'o': 57, 'p': 58, 'q': 59,
	'r': 60, 's': 61, 't': 62, 'u': 63, 'v': 64, 'w': 65, 'x': 66, 'y': 67, 'z': 68,
	'ɑ': 69, 'ɐ': 70, 'ɒ': 71, 'æ': 72, 'β': 75, 'ɔ': 76, 'ɕ': 77, 'ç': 78,
	'ɖ': 80, 'ð': 81, 'ʤ': 82, 'ə': 83, 'ɚ': 85, 'ɛ': 86, 'ɜ': 87, 'ɟ': 90,
	'ɡ': 92, 'ɥ': 99, 'ɨ': 101, 'ɪ': 102, 'ʝ': 103, 'ɯ': 110, 'ɰ': 111,
	'ŋ': 112, 'ɳ': 113, 'ɲ': 114, 'ɴ': 115, 'ø': 116, 'ɸ': 118, 'θ': 119,
	'œ': 120, 'ɹ': 123, 'ɾ': 125, 'ɻ': 126, 'ʁ': 128, 'ɽ': 129, 'ʂ': 130,
	'ʃ': 131, 'ʈ': 132, 'ʧ': 133, 'ʊ': 135, 'ʋ': 136, 'ʌ': 138, 'ɣ': 139,
	'ɤ': 140, 'χ': 142, 'ʎ': 143, 'ʒ': 147, 'ʔ': 148, 'ˈ': 156, 'ˌ': 157,
	'ː': 158, 'ʰ': 162, 'ʲ': 164,
}

// graphemeFallback covers letters whose plain spelling is not itself a
// Kokoro symbol.
var graphemeFallback = map[rune]rune{
	'g': 'ɡ',
}

// Tokenize maps text to Kokoro token ids. IPA input maps one symbol per
// token; plain text is approximated letter by letter. Unknown runes are
// dropped, runs of whitespace collapse to one space, and the result is cut
// at MaxTokens.
func Tokenize(text string) []int64 {
	tokens := make([]int64, 0, min(len(text), MaxTokens))
	lastSpace := true

	for _, r := range text {
		if len(tokens) == MaxTokens {
			break
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				tokens = append(tokens, kokoroVocab[' '])
				lastSpace = true
			}
			continue
		}

		id, ok := lookupSymbol(r)
		if !ok {
			continue
		}
		tokens = append(tokens, id)
		lastSpace = false
	}

	for len(tokens) > 0 && tokens[len(tokens)-1] == kokoroVocab[' '] {
		tokens = tokens[:len(tokens)-1]
	}

	return tokens
}

func lookupSymbol(r rune) (int64, bool) {
	if id, ok := kokoroVocab[r]; ok && !unicode.IsUpper(r) {
		return id, true
	}
	lower := unicode.ToLower(r)
	if alt, ok := graphemeFallback[lower]; ok {
		lower = alt
	}
	id, ok := kokoroVocab[lower]
	return id, ok
}

// padTokens wraps ids in the start and end pad tokens the graph expects.
func padTokens(ids []int64) []int64 {
	out := make([]int64, 0, len(ids)+2)
	out = append(out, padToken)
	out = append(out, ids...)
	return append(out, padToken)
}
