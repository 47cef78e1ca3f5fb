// Package accesslog provides structured per-connection logging for the
// acceptor and session handler. The teacher repo has no network server of
// its own to model this on; the shape (a package-global zerolog.Logger plus
// WithX child-logger helpers) follows cuemby-warren's pkg/log instead.
package accesslog

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Logger is the global access logger. Defaults to human-readable console
// output; callers may reassign it (e.g. to JSON output) before the acceptor
// starts serving.
var Logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Logger()

// NewSessionID returns a fresh correlation id for one client connection.
func NewSessionID() string {
	return uuid.NewString()
}

// WithSession returns a child logger tagging every event with session_id.
func WithSession(sessionID string) zerolog.Logger {
	return Logger.With().Str("session_id", sessionID).Logger()
}
