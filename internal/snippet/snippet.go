// Package snippet builds the contextual excerpts returned by getsnippet.
// The ';' cleanup is load-bearing: the wire protocol joins multiple
// snippets on one line with ';' as the separator (spec §6).
package snippet

import (
	"sort"
	"strings"
)

// context is the number of bytes of context kept on either side of a match.
const context = 40

// Build extracts one cleaned snippet per non-overlapping match window in
// content. queryLen is the byte length of the original (not re-tokenized)
// query string and determines how far past the match start the window
// extends. Overlapping windows are coalesced by dropping the later one
// outright — this does not merge the two windows into a wider one.
func Build(content string, queryLen int, offsets []uint64) []string {
	if content == "" || len(offsets) == 0 {
		return nil
	}

	sorted := append([]uint64(nil), offsets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []string
	lastEnd := 0
	contentLen := len(content)

	for _, pos64 := range sorted {
		pos := int(pos64)
		if pos < 0 || pos >= contentLen {
			continue
		}

		start := pos - context
		if start < 0 {
			start = 0
		}
		end := pos + queryLen + context
		if end > contentLen {
			end = contentLen
		}

		if start < lastEnd && len(out) > 0 {
			continue
		}
		lastEnd = end

		out = append(out, clean(content[start:end]))
	}

	return out
}

// clean replaces newlines, carriage returns, tabs, and the snippet
// separator with spaces, then collapses runs of spaces into one.
func clean(s string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', ';':
			return ' '
		default:
			return r
		}
	}, s)

	var b strings.Builder
	b.Grow(len(replaced))
	lastSpace := false
	for _, r := range replaced {
		if r == ' ' {
			if lastSpace {
				continue
			}
			lastSpace = true
		} else {
			lastSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
