package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPoolRunsAllTasks(t *testing.T) {
	p := New()
	p.Initialize(4)
	defer p.Terminate()

	var n int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&n, 1)
		})
	}
	wg.Wait()
	assert.Equal(t, int64(100), atomic.LoadInt64(&n))
}

func TestPoolSurvivesPanickingTask(t *testing.T) {
	p := New()
	p.Initialize(2)
	defer p.Terminate()

	done := make(chan struct{})
	p.Submit(func() { panic("boom") })
	p.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestPoolPauseResume(t *testing.T) {
	p := New()
	p.Initialize(1)
	defer p.Terminate()

	p.Pause()
	ran := make(chan struct{})
	p.Submit(func() { close(ran) })

	select {
	case <-ran:
		t.Fatal("task ran while pool was paused")
	case <-time.After(30 * time.Millisecond):
	}

	p.Resume()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("task never ran after Resume")
	}
}

func TestPoolSubmitNoopAfterTerminate(t *testing.T) {
	p := New()
	p.Initialize(1)
	p.Terminate()
	require.False(t, p.Working())
	p.Submit(func() { t.Fatal("task should never run") })
}

func TestPoolDoubleInitializeIsNoop(t *testing.T) {
	p := New()
	p.Initialize(2)
	p.Initialize(5) // should not add more workers
	defer p.Terminate()
	assert.True(t, p.Working())
}

func TestPoolTerminateNow(t *testing.T) {
	p := New()
	p.Initialize(3)
	p.TerminateNow()
	assert.False(t, p.Working())
}
