package shardqueue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type jobFn func(context.Context) error

func (f jobFn) Run(ctx context.Context) error { return f(ctx) }

func TestShardExecutor_FIFOPerKey(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 2, QueueSize: 64})
	defer ex.Stop()

	var mu sync.Mutex
	var order []int
	for i := 0; i < 20; i++ {
		i := i
		j := jobFn(func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		if err := ex.Submit(context.Background(), "deck-1", j); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := ex.Barrier(context.Background(), "deck-1"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 20 {
		t.Fatalf("expected 20 jobs, ran %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("FIFO violated at %d: %v", i, order)
		}
	}
}

func TestShardExecutor_BarrierWaitsForPrior(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 8})
	defer ex.Stop()

	var ran int32
	j := jobFn(func(context.Context) error {
		time.Sleep(30 * time.Millisecond)
		atomic.StoreInt32(&ran, 1)
		return nil
	})
	if err := ex.Submit(context.Background(), "deck-1", j); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, "deck-1"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) == 0 {
		t.Fatal("barrier returned before prior job executed")
	}
}

func TestShardExecutor_SubmitAfterStop(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 1})
	ex.Stop()
	err := ex.Submit(context.Background(), "k", jobFn(func(context.Context) error { return nil }))
	if err != ErrExecutorClosed {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
}

func TestShardExecutor_StopDrainsQueue(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 16})

	var ran int32
	for i := 0; i < 10; i++ {
		j := jobFn(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
		if err := ex.Submit(context.Background(), "k", j); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	ex.Stop()

	if got := atomic.LoadInt32(&ran); got != 10 {
		t.Fatalf("expected 10 drained jobs, got %d", got)
	}
}

func TestShardExecutor_CanceledJobSkipsRun(t *testing.T) {
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 8})
	defer ex.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	j := jobFn(func(context.Context) error {
		atomic.StoreInt32(&ran, 1)
		return nil
	})
	if err := ex.Submit(context.Background(), "k", jobFn(func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})); err != nil {
		t.Fatalf("submit warmup: %v", err)
	}
	// Submit with an already-cancelled job context; the worker must skip it.
	qj := queuedJob{ctx: ctx, job: j}
	ex.queues[0] <- qj

	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatal("cancelled job should not have run")
	}
}
