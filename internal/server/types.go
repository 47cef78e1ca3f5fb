// Package server implements the connection acceptor, admission control, and
// per-connection session protocol described in spec §4.7-4.8.
package server

import "github.com/standardbeagle/corpusd/internal/types"

// sessionResult is one entry of a session's last search, numbered the way
// getsnippet indexes into it.
type sessionResult struct {
	index     int
	path      string
	fileName  string
	relevance float64
	offsets   []uint64
}

// sessionState holds the per-connection state getsnippet resolves against:
// the last query issued and the last search's results.
type sessionState struct {
	lastQuery string
	results   []sessionResult
}

func newSessionResults(matches []types.SearchResult) []sessionResult {
	out := make([]sessionResult, len(matches))
	for i, m := range matches {
		out[i] = sessionResult{
			index:     i,
			path:      m.DocumentPath,
			fileName:  baseName(m.DocumentPath),
			relevance: float64(len(m.MatchStartCharOffsets)),
			offsets:   m.MatchStartCharOffsets,
		}
	}
	return out
}

// baseName returns the substring after the last '/' or '\', matching the
// original's separator-agnostic basename extraction (spec §4.8 step 3).
func baseName(path string) string {
	last := -1
	for i := 0; i < len(path); i++ {
		if path[i] == '/' || path[i] == '\\' {
			last = i
		}
	}
	if last == -1 {
		return path
	}
	return path[last+1:]
}
