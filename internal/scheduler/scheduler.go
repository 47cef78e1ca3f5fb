// Package scheduler implements the background refresh task: a single
// dedicated goroutine that periodically re-lists the corpus and triggers an
// incremental index build, so newly added files become searchable without a
// restart.
package scheduler

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/corpusd/internal/debug"
)

// Corpus is the subset of corpus.Provider the scheduler needs to list (it
// never reads document content itself).
type Corpus interface {
	ListPaths(ctx context.Context) []string
}

// Builder triggers an incremental index build.
type Builder interface {
	Build(ctx context.Context) error
}

// dirtyChecker is satisfied by corpus.FSProvider; scheduler only depends on
// it through this narrow interface so tests can supply a stub.
type dirtyChecker interface {
	Dirty() bool
}

// Scheduler ticks every interval (checked in one-second increments so
// Stop is observed within a second) and drives Builder.Build.
type Scheduler struct {
	corpus   Corpus
	builder  Builder
	interval time.Duration
	dirty    dirtyChecker

	stopping atomic.Bool
	stopped  chan struct{}
}

// New returns a Scheduler that ticks every interval. dirty may be nil; when
// set (an FSProvider with WatchForChanges running), a dirty signal makes a
// tick fire immediately instead of waiting out the rest of the interval.
func New(corpus Corpus, builder Builder, interval time.Duration, dirty dirtyChecker) *Scheduler {
	return &Scheduler{
		corpus:   corpus,
		builder:  builder,
		interval: interval,
		dirty:    dirty,
		stopped:  make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called. Call it in its own
// goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	defer close(s.stopped)

	ticks := int(s.interval / time.Second)
	if ticks < 1 {
		ticks = 1
	}

	for !s.stopping.Load() {
		if !s.sleep(ctx, ticks) {
			return
		}
		if s.stopping.Load() {
			return
		}
		s.tick(ctx)
	}
}

// sleep waits out the interval in one-second increments, checking stopping
// and ctx each second, and returning early if the corpus has been marked
// dirty by a file-watch event.
func (s *Scheduler) sleep(ctx context.Context, ticks int) bool {
	for i := 0; i < ticks; i++ {
		if s.stopping.Load() {
			return false
		}
		if s.dirty != nil && s.dirty.Dirty() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}
	return true
}

func (s *Scheduler) tick(ctx context.Context) {
	paths := s.corpus.ListPaths(ctx)
	fingerprint := fingerprintPaths(paths)
	debug.LogScheduler("tick: %d paths, fingerprint %x\n", len(paths), fingerprint)

	if err := s.builder.Build(ctx); err != nil {
		debug.LogScheduler("build failed: %v\n", err)
	}
}

// fingerprintPaths hashes the sorted, joined path list so repeated ticks
// over an unchanged corpus can be told apart from ones that actually found
// new documents, without re-hashing file contents.
func fingerprintPaths(paths []string) uint64 {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	return xxhash.Sum64String(strings.Join(sorted, "\x00"))
}

// Stop signals the scheduler to exit; it will stop within one second.
func (s *Scheduler) Stop() {
	s.stopping.Store(true)
}

// Stopped is closed once Run has returned.
func (s *Scheduler) Stopped() <-chan struct{} {
	return s.stopped
}
