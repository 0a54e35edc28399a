package rwlock

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadersConcurrent(t *testing.T) {
	l := New(0)
	g1 := l.Read()
	g2 := l.Read()
	defer g1.Unlock()
	defer g2.Unlock()
	assert.Equal(t, uint64(4), l.state.Load())
}

func TestWriterExclusive(t *testing.T) {
	l := New(0)
	g := l.Write()
	assert.Equal(t, uint64(math.MaxUint64), l.state.Load())
	g.Unlock()
	assert.Equal(t, uint64(0), l.state.Load())
}

// TestWriterBlocksNewReaders is testable property #3: once a writer is
// waiting, new readers must queue behind it rather than starve it forever.
func TestWriterBlocksNewReaders(t *testing.T) {
	l := New(0)
	r1 := l.Read()

	writerDone := make(chan struct{})
	go func() {
		w := l.Write()
		w.Unlock()
		close(writerDone)
	}()

	// Give the writer goroutine time to observe the held read lock and set
	// the waiting bit.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, uint64(1), l.state.Load()&1, "writer must have set the waiting bit")

	newReaderAcquired := make(chan struct{})
	go func() {
		r := l.Read()
		close(newReaderAcquired)
		r.Unlock()
	}()

	select {
	case <-newReaderAcquired:
		t.Fatal("new reader acquired while a writer was waiting")
	case <-time.After(20 * time.Millisecond):
	}

	r1.Unlock()

	select {
	case <-writerDone:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired after last reader released")
	}
	select {
	case <-newReaderAcquired:
	case <-time.After(time.Second):
		t.Fatal("queued reader never acquired after writer released")
	}
}

// TestStateEncodingRoundTrip exercises the state machine's reader
// acquire/release pairs under randomized ordering, in the style of
// dijkstracula-go-ilock's extract-idempotency tests.
func TestStateEncodingRoundTrip(t *testing.T) {
	for i := 0; i < 50; i++ {
		l := New(0)
		n := 1 + rand.Intn(8)
		guards := make([]*ReadGuard[int], n)
		for j := 0; j < n; j++ {
			guards[j] = l.Read()
		}
		assert.Equal(t, uint64(2*n), l.state.Load())

		rand.Shuffle(n, func(a, b int) { guards[a], guards[b] = guards[b], guards[a] })
		for _, g := range guards {
			g.Unlock()
		}
		assert.Equal(t, uint64(0), l.state.Load())
	}
}

// TestMutualExclusionUnderContention is testable property #1 for the writer
// side: concurrent writers must never observe each other's critical section.
func TestMutualExclusionUnderContention(t *testing.T) {
	l := New(0)
	var counter int64
	var wg sync.WaitGroup
	const goroutines = 8
	const iterations = 200
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				w := l.Write()
				counter++
				w.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(goroutines*iterations), counter)
}

// TestNoLostWakeupManyReaders is testable property #7's RW-lock analogue:
// many readers queued behind a writer must all eventually wake.
func TestNoLostWakeupManyReaders(t *testing.T) {
	l := New(0)
	w := l.Write()

	const readers = 32
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			r := l.Read()
			r.Unlock()
		}()
	}

	time.Sleep(10 * time.Millisecond)
	w.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("some readers never acquired: lost wakeup")
	}
}
