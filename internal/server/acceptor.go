package server

import (
	"context"
	"net"
	"sync"

	"github.com/standardbeagle/corpusd/internal/accesslog"
	"github.com/standardbeagle/corpusd/internal/debug"
	"github.com/standardbeagle/corpusd/internal/queue"
	"github.com/standardbeagle/corpusd/internal/workerpool"
)

// Acceptor binds a listener and admits connections onto a fixed-size client
// pool, parking overflow in a waiting queue until a slot frees up (spec
// §4.7). Connection slot lifecycle: accepted -> (admitted | waiting) ->
// running -> finished.
type Acceptor struct {
	index Searcher
	docs  DocumentReader

	maxActiveClients int
	clientPool       *workerpool.Pool
	waiting          *queue.Queue

	mu            sync.Mutex
	activeClients int

	listener net.Listener
}

// NewAcceptor builds an Acceptor with a dedicated client pool of clientWorkers
// goroutines, distinct from the ingest pool used for index construction
// (SPEC_FULL.md §11 / design note §9: two pools, two lifetimes).
func NewAcceptor(index Searcher, docs DocumentReader, maxActiveClients, clientWorkers int) *Acceptor {
	pool := workerpool.New()
	pool.Initialize(clientWorkers)
	return &Acceptor{
		index:            index,
		docs:             docs,
		maxActiveClients: maxActiveClients,
		clientPool:       pool,
		waiting:          queue.New(),
	}
}

// Listen binds the TCP listener. Bind failure is the one fatal error at
// start-up (spec §7).
func (a *Acceptor) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	a.listener = ln
	return nil
}

// Serve accepts connections until the listener is closed. Run it in its own
// goroutine; call Close to make it return.
func (a *Acceptor) Serve(ctx context.Context) {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			return
		}
		a.admit(ctx, conn)
	}
}

// admit either hands the connection straight to the client pool or, if the
// pool is already saturated, tells the client it is busy and parks the
// session in the waiting queue.
func (a *Acceptor) admit(ctx context.Context, conn net.Conn) {
	sessionID := accesslog.NewSessionID()

	a.mu.Lock()
	admitted := a.activeClients < a.maxActiveClients
	if admitted {
		a.activeClients++
	}
	a.mu.Unlock()

	task := func() { a.run(ctx, sessionID, conn) }

	if admitted {
		accesslog.WithSession(sessionID).Info().Msg("admitted")
		a.clientPool.Submit(task)
		return
	}

	accesslog.WithSession(sessionID).Info().Msg("busy, queued")
	_, _ = conn.Write([]byte("SERVER_BUSY\n"))
	a.waiting.Emplace(task)
}

// run executes one session's full lifetime, then releases its slot and
// promotes the next waiting client if any.
func (a *Acceptor) run(ctx context.Context, sessionID string, conn net.Conn) {
	defer conn.Close()
	defer a.release(ctx)

	sess := NewSession(sessionID, a.index, a.docs, conn, conn)
	sess.Serve(ctx)
}

// release decrements the active-client count and, if the waiting queue is
// non-empty, promotes one waiting task into the freed slot. Promotion from
// waiting to running happens exactly once per waiting task.
func (a *Acceptor) release(ctx context.Context) {
	a.mu.Lock()
	a.activeClients--
	if a.waiting.Empty() {
		a.mu.Unlock()
		return
	}
	// Only release pops the waiting queue, and it does so under a.mu, so the
	// task seen above is still there and Pop does not block.
	task := a.waiting.Pop()
	a.activeClients++
	a.mu.Unlock()

	debug.LogServer("promoting a waiting client\n")
	a.clientPool.Submit(task)
}

// ActiveClients returns the current number of admitted (running) sessions,
// for tests and diagnostics.
func (a *Acceptor) ActiveClients() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeClients
}

// WaitingCount returns the number of sessions currently parked in the
// waiting queue.
func (a *Acceptor) WaitingCount() int {
	return a.waiting.Size()
}

// Close stops accepting new connections.
func (a *Acceptor) Close() error {
	if a.listener == nil {
		return nil
	}
	return a.listener.Close()
}

// Shutdown closes the listener and terminates the client pool, draining
// sessions currently in flight. Sockets still in the waiting queue are not
// individually closed; the pool's Terminate join only waits on in-flight
// tasks, matching spec §5's "sockets in the waiting queue at shutdown may be
// closed without service".
func (a *Acceptor) Shutdown() {
	_ = a.Close()
	a.clientPool.Terminate()
}
