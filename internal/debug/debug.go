// Package debug provides an opt-in diagnostic log, off by default, for the
// subsystems that don't otherwise have anywhere to put their trace output.
// It deliberately does not depend on a logging framework: process bootstrap
// and logging configuration are external collaborators (spec §1), and this
// is the seam they plug into.
package debug

import (
	"fmt"
	"io"
	"sync"
)

// Enabled can be flipped at process start (e.g. from a CLI flag) to turn on
// trace output. Left false, every Log* call is a no-op.
var Enabled = false

var (
	mu  sync.Mutex
	out io.Writer
)

// SetOutput sets the writer trace lines are sent to. Passing nil disables
// output even if Enabled is true.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func logf(tag, format string, args ...interface{}) {
	if !Enabled {
		return
	}
	mu.Lock()
	w := out
	mu.Unlock()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s] "+format, append([]interface{}{tag}, args...)...)
}

// LogIndex traces index build/merge activity.
func LogIndex(format string, args ...interface{}) { logf("index", format, args...) }

// LogServer traces acceptor/session activity.
func LogServer(format string, args ...interface{}) { logf("server", format, args...) }

// LogScheduler traces refresh scheduler ticks.
func LogScheduler(format string, args ...interface{}) { logf("scheduler", format, args...) }

// LogCorpus traces corpus provider list/read activity.
func LogCorpus(format string, args ...interface{}) { logf("corpus", format, args...) }

// LogPool traces worker pool lifecycle and recovered task panics.
func LogPool(format string, args ...interface{}) { logf("pool", format, args...) }
