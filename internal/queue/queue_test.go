package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestQueueFIFOOrder(t *testing.T) {
	q := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.Emplace(func() { order = append(order, i) })
	}
	for i := 0; i < 5; i++ {
		q.Pop()()
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestQueuePopBlocksUntilEmplace(t *testing.T) {
	q := New()
	done := make(chan struct{})
	go func() {
		q.Pop()()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Pop returned before a task was emplaced")
	case <-time.After(20 * time.Millisecond):
	}

	ran := make(chan struct{})
	q.Emplace(func() { close(ran) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Pop never returned after Emplace")
	}
	<-ran
}

func TestQueueShutdownWakesWaitersWithSentinel(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	results := make([]bool, 4)
	for i := 0; i < 4; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			task := q.Pop()
			require.NotNil(t, task)
			task() // sentinel must not panic
			results[i] = true
		}()
	}
	time.Sleep(20 * time.Millisecond)
	q.Shutdown()
	wg.Wait()
	for _, ok := range results {
		assert.True(t, ok)
	}
}

func TestQueueEmplaceAfterShutdownIsNoop(t *testing.T) {
	q := New()
	q.Shutdown()
	q.Emplace(func() { t.Fatal("task should never run") })
	assert.True(t, q.Empty())
}

func TestQueueSizeEmptyClear(t *testing.T) {
	q := New()
	assert.True(t, q.Empty())
	q.Emplace(func() {})
	q.Emplace(func() {})
	assert.Equal(t, 2, q.Size())
	q.Clear()
	assert.True(t, q.Empty())
}
