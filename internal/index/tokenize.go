package index

import "github.com/standardbeagle/corpusd/internal/types"

// tokenPosition pairs a lowercased token with where it was found.
type tokenPosition struct {
	token    string
	position types.WordPosition
}

// tokenize scans text byte-by-byte and emits each maximal run of ASCII
// alphanumerics as a lowercased token, with its byte offset and its ordinal
// among all tokens of the text. Non-alphanumerics are separators and are
// discarded; empty input yields no tokens.
func tokenize(text string) []tokenPosition {
	var out []tokenPosition
	charOffset := 0
	wordOffset := uint64(0)
	var current []byte

	emit := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, tokenPosition{
			token: string(current),
			position: types.WordPosition{
				CharOffset: uint64(charOffset),
				WordOffset: wordOffset,
			},
		})
		current = current[:0]
		wordOffset++
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if isAlnum(c) {
			if len(current) == 0 {
				charOffset = i
			}
			current = append(current, lower(c))
		} else {
			emit()
		}
	}
	emit()

	return out
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
