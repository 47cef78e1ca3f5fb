// Package errors defines typed errors used for internal context and logging.
// The wire protocol never surfaces these directly; it only ever emits the
// fixed response lines the session handler writes.
package errors

import (
	"fmt"
	"time"
)

// Kind classifies where an error originated.
type Kind string

const (
	KindCorpus   Kind = "corpus"
	KindProtocol Kind = "protocol"
	KindIndex    Kind = "index"
	KindInternal Kind = "internal"
)

// CorpusError wraps a failure reading or listing the corpus.
type CorpusError struct {
	Operation  string
	Path       string
	Underlying error
	Timestamp  time.Time
}

// NewCorpusError creates a new corpus error with context.
func NewCorpusError(op string, err error) *CorpusError {
	return &CorpusError{Operation: op, Underlying: err, Timestamp: time.Now()}
}

// WithPath attaches the file path that was being read or listed.
func (e *CorpusError) WithPath(path string) *CorpusError {
	e.Path = path
	return e
}

func (e *CorpusError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", KindCorpus, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", KindCorpus, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *CorpusError) Unwrap() error {
	return e.Underlying
}

// ProtocolError describes a malformed or rejected client command.
type ProtocolError struct {
	Command   string
	Reason    string
	Timestamp time.Time
}

// NewProtocolError creates a new protocol error with context.
func NewProtocolError(command, reason string) *ProtocolError {
	return &ProtocolError{Command: command, Reason: reason, Timestamp: time.Now()}
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: command %q rejected: %s", KindProtocol, e.Command, e.Reason)
}

// IndexError wraps a failure building or searching the inverted index.
type IndexError struct {
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewIndexError creates a new index error with context.
func NewIndexError(op string, err error) *IndexError {
	return &IndexError{Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", KindIndex, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *IndexError) Unwrap() error {
	return e.Underlying
}

// InternalError wraps a recovered panic, the last line of defense around
// worker-pool tasks.
type InternalError struct {
	Context   string
	Recovered interface{}
	Timestamp time.Time
}

// NewInternalError creates a new internal error from a recovered panic
// value.
func NewInternalError(context string, recovered interface{}) *InternalError {
	return &InternalError{Context: context, Recovered: recovered, Timestamp: time.Now()}
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s %s: recovered %v", KindInternal, e.Context, e.Recovered)
}
