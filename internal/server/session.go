package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/standardbeagle/corpusd/internal/accesslog"
	corpuserrors "github.com/standardbeagle/corpusd/internal/errors"
	"github.com/standardbeagle/corpusd/internal/snippet"
	"github.com/standardbeagle/corpusd/internal/types"
)

// Searcher runs a phrase search against the index.
type Searcher interface {
	Search(ctx context.Context, query string) []types.SearchResult
}

// DocumentReader reads a corpus document's content.
type DocumentReader interface {
	Read(ctx context.Context, path string) string
}

// Session drives the line protocol for one client connection (spec §4.8).
// It is transport-agnostic: r/w are whatever reader/writer the caller
// provides (the reader is wrapped in a bufio.Reader here), so tests can drive
// it over an in-memory pipe.
type Session struct {
	ID    string
	index Searcher
	docs  DocumentReader
	r     *bufio.Reader
	w     io.Writer
	state sessionState
}

// NewSession wraps a connection's reader/writer into a protocol Session.
func NewSession(id string, index Searcher, docs DocumentReader, r io.Reader, w io.Writer) *Session {
	return &Session{
		ID:    id,
		index: index,
		docs:  docs,
		r:     bufio.NewReader(r),
		w:     w,
	}
}

// Serve sends the welcome line and processes commands until EOF, a write
// failure, or quit. Commands are handled strictly in arrival order and
// their responses are written in the same order (spec §5).
func (s *Session) Serve(ctx context.Context) {
	log := accesslog.WithSession(s.ID)
	if !s.send("Welcome to Search Server!\n") {
		return
	}

	for {
		line, err := s.r.ReadString('\n')
		if err != nil {
			// Matches the original's byte-at-a-time ReceiveMessage: a
			// connection that closes mid-line drops that partial line
			// rather than processing it.
			break
		}

		cmd := strings.Trim(line, " \r\n\t")
		if cmd == "" {
			continue
		}

		quit, ok := s.dispatch(ctx, cmd)
		if !ok || quit {
			break
		}
	}
	log.Info().Msg("session closed")
}

// dispatch handles one trimmed command line, returning (quit, ok) where ok
// is false if a write failed and the caller should stop reading further
// commands.
func (s *Session) dispatch(ctx context.Context, cmd string) (quit bool, ok bool) {
	switch {
	case strings.HasPrefix(cmd, "search "):
		return false, s.handleSearch(ctx, strings.TrimPrefix(cmd, "search "))
	case cmd == "search":
		return false, s.handleSearch(ctx, "")
	case strings.HasPrefix(cmd, "getsnippet "):
		return false, s.handleGetSnippet(ctx, strings.TrimPrefix(cmd, "getsnippet "))
	case cmd == "getsnippet":
		return false, s.handleGetSnippet(ctx, "")
	case cmd == "quit":
		return true, s.send("BYE\n")
	default:
		protoErr := corpuserrors.NewProtocolError(cmd, "unrecognized command")
		accesslog.WithSession(s.ID).Warn().Err(protoErr).Msg("rejected command")
		return false, s.send("Unknown command\n")
	}
}

func (s *Session) handleSearch(ctx context.Context, query string) bool {
	results := s.index.Search(ctx, query)
	s.state.lastQuery = query
	s.state.results = newSessionResults(results)

	if len(results) == 0 {
		return s.send("NOT_FOUND\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "OK:%d\n", len(s.state.results))
	for _, r := range s.state.results {
		fmt.Fprintf(&b, "[%d] %s | matches=%v\n", r.index, r.path, r.relevance)
	}
	return s.send(b.String())
}

func (s *Session) handleGetSnippet(ctx context.Context, arg string) bool {
	if len(s.state.results) == 0 {
		return s.send("ERROR_NO_RESULTS\n")
	}

	n, err := parseIndex(arg)
	if err != nil || n < 0 || n >= len(s.state.results) {
		protoErr := corpuserrors.NewProtocolError("getsnippet", "index out of range or not numeric")
		accesslog.WithSession(s.ID).Warn().Err(protoErr).Msg("rejected command")
		return s.send("ERROR_INVALID_INDEX\n")
	}

	result := s.state.results[n]
	content := s.docs.Read(ctx, result.path)
	if content == "" {
		return s.send("ERROR_READING_FILE\n")
	}

	snippets := snippet.Build(content, len(s.state.lastQuery), result.offsets)
	if len(snippets) == 0 {
		return s.send("ERROR_NO_SNIPPETS\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SNIPPETS_FOUND:%d\n", len(snippets))
	b.WriteString(strings.Join(snippets, ";"))
	b.WriteString("\n")
	return s.send(b.String())
}

// parseIndex requires arg to be a non-empty run of ASCII digits, matching
// the original's manual isdigit loop (no sign, no leading/trailing junk).
func parseIndex(arg string) (int, error) {
	if arg == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(arg); i++ {
		if arg[i] < '0' || arg[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(arg)
}

func (s *Session) send(msg string) bool {
	_, err := io.WriteString(s.w, msg)
	return err == nil
}
