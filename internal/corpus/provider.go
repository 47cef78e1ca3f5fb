// Package corpus defines the Corpus Provider contract and a filesystem
// implementation of it. Per spec, file discovery and file reading are
// external collaborators to the search engine core: everything else in this
// module only ever talks to the two methods below.
package corpus

import "context"

// Provider lists and reads the documents that make up the corpus. Ordering
// of ListPaths must be stable across calls on an unchanged filesystem so
// that previously assigned document ids remain valid.
type Provider interface {
	// ListPaths returns the deduplicated, discovery-ordered list of document
	// paths across all configured roots.
	ListPaths(ctx context.Context) []string

	// Read returns a document's full contents, or "" if it could not be
	// read. Failures are logged by the implementation, not returned to the
	// caller: the index simply ingests zero tokens for that document.
	Read(ctx context.Context, path string) string
}
