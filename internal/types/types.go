// Package types holds the small value types shared across the indexing,
// search, and protocol layers so that none of them need to import each
// other just to talk about a document or a position.
package types

// DocumentID is a dense, monotonically-assigned identifier for a corpus
// document. DocumentID n corresponds to path list index n.
type DocumentID uint64

// WordPosition is a single occurrence of a token within a document.
type WordPosition struct {
	CharOffset uint64 // byte index of the token's first character
	WordOffset uint64 // zero-based ordinal among all tokens of the document
}

// SearchResult is one matched document together with the char offsets where
// the phrase was found, in discovery order (callers sort as needed).
type SearchResult struct {
	DocumentID            DocumentID
	DocumentPath          string
	MatchStartCharOffsets []uint64
}
