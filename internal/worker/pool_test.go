package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{err: nil}
}

func TestNewPool(t *testing.T) {
	p1 := NewPool(5, 0)
	if p1.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p1.workers)
	}

	p2 := NewPool(0, 0)
	if p2.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p2.workers)
	}

	// Queue never smaller than workers*2.
	p3 := NewPool(4, 1)
	if cap(p3.jobQueue) != 8 || cap(p3.results) != 8 {
		t.Errorf("expected queue capacity 8, got %d/%d", cap(p3.jobQueue), cap(p3.results))
	}

	p4 := NewPool(4, 30)
	if cap(p4.jobQueue) != 30 || cap(p4.results) != 30 {
		t.Errorf("expected queue capacity 30, got %d/%d", cap(p4.jobQueue), cap(p4.results))
	}
}

func TestPool_Execution(t *testing.T) {
	count := 10
	pool := NewPool(2, count)
	pool.Start()

	var executed int32

	for i := 0; i < count; i++ {
		pool.Submit(&mockJob{executed: &executed})
	}

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("expected %d results, got %d", count, len(results))
	}

	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPool_BatchLargerThanWorkers(t *testing.T) {
	// The whole batch is submitted before Wait drains anything, so the
	// queue must absorb every job and every result without blocking.
	count := 30
	pool := NewPool(4, count)
	pool.Start()

	var executed int32
	done := make(chan []Result)

	go func() {
		for i := 0; i < count; i++ {
			pool.Submit(&mockJob{executed: &executed})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("expected %d results, got %d", count, len(results))
		}
		if atomic.LoadInt32(&executed) != int32(count) {
			t.Errorf("expected %d executed jobs, got %d", count, executed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("submit-then-wait blocked on a batch larger than the worker count")
	}
}

func TestPool_ErrorResults(t *testing.T) {
	pool := NewPool(2, 0)
	pool.Start()

	pool.Submit(&mockJob{shouldErr: true})
	pool.Submit(&mockJob{})

	results := pool.Wait()

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	errCount := 0
	for _, r := range results {
		if r.GetError() != nil {
			errCount++
		}
	}
	if errCount != 1 {
		t.Errorf("expected 1 error result, got %d", errCount)
	}
}

func TestPool_Shutdown(t *testing.T) {
	pool := NewPool(2, 0)
	pool.Start()

	for i := 0; i < 4; i++ {
		pool.Submit(&mockJob{duration: time.Second})
	}

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}

func TestPool_WaitWithNoJobs(t *testing.T) {
	pool := NewPool(2, 0)
	pool.Start()

	results := pool.Wait()
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}
