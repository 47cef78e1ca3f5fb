// Package index implements the positional inverted index: incremental,
// concurrent build over a Corpus Provider, and single-threaded phrase
// search with a rarest-word pivot. See SPEC_FULL.md §11 for how the build
// coordinator uses errgroup instead of the original's busy-wait counter.
package index

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/corpusd/internal/corpus"
	"github.com/standardbeagle/corpusd/internal/debug"
	corpuserrors "github.com/standardbeagle/corpusd/internal/errors"
	"github.com/standardbeagle/corpusd/internal/types"
	"github.com/standardbeagle/corpusd/internal/workerpool"
)

// postings maps document id to its ordered, deduplicated position list for
// one token.
type postings map[types.DocumentID][]types.WordPosition

// Index is the positional inverted index. It is safe for concurrent use:
// Search takes a shared read lock, Build's merges take the exclusive lock
// only around the append step.
type Index struct {
	mu           sync.RWMutex
	tokens       map[string]postings
	indexedCount int

	corpus Provider
	ingest *workerpool.Pool
}

// Provider is an alias for corpus.Provider, so tests can supply a stub
// without importing the corpus package.
type Provider = corpus.Provider

// New returns an empty Index that ingests new documents through ingest.
func New(provider Provider, ingest *workerpool.Pool) *Index {
	return &Index{
		tokens: make(map[string]postings),
		corpus: provider,
		ingest: ingest,
	}
}

// IndexedCount returns the number of documents already fully ingested.
func (idx *Index) IndexedCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.indexedCount
}

// Size returns the number of distinct tokens in the index, the Go
// equivalent of the original InvertedIndex::Size().
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.tokens)
}

// Clear resets the index to empty. Used by Rebuild and an optional full
// rebuild operation.
func (idx *Index) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tokens = make(map[string]postings)
	idx.indexedCount = 0
}

// Build lists the corpus and, for every document id not yet indexed,
// tokenizes and merges it into the index. It returns once every newly
// enqueued ingest task has completed and indexedCount has advanced to the
// current path list length.
func (idx *Index) Build(ctx context.Context) error {
	paths := idx.corpus.ListPaths(ctx)

	idx.mu.RLock()
	start := idx.indexedCount
	idx.mu.RUnlock()

	if len(paths) <= start {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for docID := start; docID < len(paths); docID++ {
		docID := types.DocumentID(docID)
		path := paths[docID]

		g.Go(func() error {
			done := make(chan struct{})
			idx.ingest.Submit(func() {
				defer close(done)
				idx.ingestOne(gctx, docID, path)
			})
			select {
			case <-done:
			case <-gctx.Done():
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return corpuserrors.NewIndexError("build", err)
	}

	debug.LogIndex("build: indexed documents %d..%d\n", start, len(paths))

	idx.mu.Lock()
	idx.indexedCount = len(paths)
	idx.mu.Unlock()
	return nil
}

// ingestOne tokenizes a single document and merges its occurrences into the
// shared index under the exclusive lock. Local tokenization is lock-free;
// because each document is handled by exactly one task, the position list
// it contributes per token is already sorted and never interleaved with
// another task's contribution for the same document.
func (idx *Index) ingestOne(ctx context.Context, docID types.DocumentID, path string) {
	content := idx.corpus.Read(ctx, path)
	tokens := tokenize(content)

	local := make(map[string][]types.WordPosition)
	for _, tp := range tokens {
		local[tp.token] = append(local[tp.token], tp.position)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for token, positions := range local {
		docPostings, ok := idx.tokens[token]
		if !ok {
			docPostings = make(postings)
			idx.tokens[token] = docPostings
		}
		docPostings[docID] = append(docPostings[docID], positions...)
	}
}

// Rebuild clears the index and builds it from scratch.
func (idx *Index) Rebuild(ctx context.Context) error {
	idx.Clear()
	return idx.Build(ctx)
}

// Search finds every document containing the query's words as a contiguous
// phrase, returning results sorted by descending match count then ascending
// path. Empty input, an absent word, or an empty corpus all yield an empty
// result, never an error.
func (idx *Index) Search(ctx context.Context, query string) []types.SearchResult {
	words := tokenizeWords(query)
	if len(words) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	wordPostings := make([]postings, len(words))
	for i, w := range words {
		p, ok := idx.tokens[w]
		if !ok {
			return nil
		}
		wordPostings[i] = p
	}

	rarest := rarestIndex(wordPostings)

	matches := make(map[types.DocumentID][]uint64)
	for docID, rarePositions := range wordPostings[rarest] {
		for _, rp := range rarePositions {
			if rp.WordOffset < uint64(rarest) {
				continue
			}
			base := rp.WordOffset - uint64(rarest)

			phraseStart, ok := idx.matchPhrase(wordPostings, rarest, docID, base, rp.CharOffset)
			if !ok {
				continue
			}
			matches[docID] = append(matches[docID], phraseStart)
		}
	}

	paths := idx.corpus.ListPaths(ctx)
	results := make([]types.SearchResult, 0, len(matches))
	for docID, offsets := range matches {
		if int(docID) >= len(paths) {
			continue
		}
		results = append(results, types.SearchResult{
			DocumentID:            docID,
			DocumentPath:          paths[docID],
			MatchStartCharOffsets: offsets,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if len(results[i].MatchStartCharOffsets) != len(results[j].MatchStartCharOffsets) {
			return len(results[i].MatchStartCharOffsets) > len(results[j].MatchStartCharOffsets)
		}
		return results[i].DocumentPath < results[j].DocumentPath
	})
	return results
}

// matchPhrase checks whether every word other than the rarest one has an
// occurrence at its expected word_offset in docID, binary-searching each
// posting list. It returns the phrase's starting char offset.
func (idx *Index) matchPhrase(wordPostings []postings, rarest int, docID types.DocumentID, base, rareCharOffset uint64) (uint64, bool) {
	phraseStart := rareCharOffset
	foundStart := rarest == 0

	for i, p := range wordPostings {
		if i == rarest {
			continue
		}
		positions, ok := p[docID]
		if !ok {
			return 0, false
		}
		target := base + uint64(i)
		pos, ok := binarySearchWordOffset(positions, target)
		if !ok {
			return 0, false
		}
		if i == 0 {
			phraseStart = pos.CharOffset
			foundStart = true
		}
	}
	return phraseStart, foundStart
}

func binarySearchWordOffset(positions []types.WordPosition, target uint64) (types.WordPosition, bool) {
	lo, hi := 0, len(positions)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if positions[mid].WordOffset == target {
			return positions[mid], true
		}
		if positions[mid].WordOffset < target {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return types.WordPosition{}, false
}

// rarestIndex returns the index of the posting map with the fewest
// documents, ties broken by the smallest index.
func rarestIndex(wordPostings []postings) int {
	rarest := 0
	min := -1
	for i, p := range wordPostings {
		if min == -1 || len(p) < min {
			min = len(p)
			rarest = i
		}
	}
	return rarest
}

func tokenizeWords(query string) []string {
	tps := tokenize(query)
	words := make([]string, len(tps))
	for i, tp := range tps {
		words[i] = tp.token
	}
	return words
}
