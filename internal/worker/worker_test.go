package worker_test

import (
	"sync"
	"testing"
	"time"

	"github.com/cmus-go/playcore/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Queue_RunsJobsInFIFOOrder(t *testing.T) {
	q := worker.New()
	defer q.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)

	for i := 1; i <= 3; i++ {
		i := i
		q.Add("t", func(cancelling func() bool, data any) {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}, nil)
	}

	waitTimeout(t, &wg, time.Second)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func Test_Queue_Remove_DropsQueuedJobsOfType(t *testing.T) {
	q := worker.New()
	defer q.Close()

	block := make(chan struct{})
	var ran bool
	var mu sync.Mutex

	// Occupy the worker so the next two adds stay queued.
	q.Add("blocker", func(cancelling func() bool, data any) {
		<-block
	}, nil)

	q.Add("drop-me", func(cancelling func() bool, data any) {
		mu.Lock()
		ran = true
		mu.Unlock()
	}, nil)

	q.Remove("drop-me")
	close(block)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, ran)
}

func Test_Queue_Remove_WaitsForRunningJobToCancel(t *testing.T) {
	q := worker.New()
	defer q.Close()

	started := make(chan struct{})
	q.Add("job", func(cancelling func() bool, data any) {
		close(started)
		for !cancelling() {
			time.Sleep(time.Millisecond)
		}
	}, nil)

	<-started
	done := make(chan struct{})
	go func() {
		q.Remove("job")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Remove did not return after the job observed cancelling()")
	}
}

func Test_Queue_Close_DrainsRemainingJobs(t *testing.T) {
	q := worker.New()
	var ran bool
	var mu sync.Mutex

	q.Add("t", func(cancelling func() bool, data any) {
		mu.Lock()
		ran = true
		mu.Unlock()
	}, nil)

	q.Close()
	mu.Lock()
	defer mu.Unlock()
	require.True(t, ran)
}

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for jobs")
	}
}
