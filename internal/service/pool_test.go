package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"semsearch/internal/logger"
)

func TestPoolRunsSubmittedWork(t *testing.T) {
	p := newWorkerPool(2, 4, logger.NewDiscard())
	defer p.close()

	vecs, err := p.submit(context.Background(), func() ([][]float32, error) {
		return [][]float32{{1, 2, 3}}, nil
	})
	if err != nil {
		t.Fatalf("submit() error: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 3 {
		t.Errorf("unexpected result shape: %v", vecs)
	}
}

func TestPoolBoundedConcurrency(t *testing.T) {
	const workers = 2
	p := newWorkerPool(workers, 16, logger.NewDiscard())
	defer p.close()

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.submit(context.Background(), func() ([][]float32, error) {
				n := current.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				current.Add(-1)
				return nil, nil
			})
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > workers {
		t.Errorf("observed %d concurrent tasks, pool limit is %d", got, workers)
	}
}

func TestPoolDispatchesInArrivalOrder(t *testing.T) {
	p := newWorkerPool(1, 8, logger.NewDiscard())
	defer p.close()

	// Park the single worker so queued units pile up behind it.
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = p.submit(context.Background(), func() ([][]float32, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	const units = 5
	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < units; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.submit(context.Background(), func() ([][]float32, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil, nil
			})
		}()
		// Admit the next unit only once this one sits in the queue, so
		// the arrival order is fixed.
		for len(p.tasks) != i+1 {
			time.Sleep(time.Millisecond)
		}
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, got := range order {
		if got != i {
			t.Fatalf("execution order %v, want ascending arrival order", order)
		}
	}
}

func TestPoolSubmitAfterClose(t *testing.T) {
	p := newWorkerPool(1, 1, logger.NewDiscard())
	p.close()

	_, err := p.submit(context.Background(), func() ([][]float32, error) {
		return nil, nil
	})
	var ie *InfrastructureError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InfrastructureError after close, got %v", err)
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := newWorkerPool(1, 1, logger.NewDiscard())
	defer p.close()

	_, err := p.submit(context.Background(), func() ([][]float32, error) {
		panic("model blew up")
	})
	var ie *InfrastructureError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InfrastructureError from panic, got %v", err)
	}

	// The worker must survive the panic and keep serving.
	vecs, err := p.submit(context.Background(), func() ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	if err != nil {
		t.Fatalf("submit() after panic error: %v", err)
	}
	if len(vecs) != 1 {
		t.Errorf("unexpected result: %v", vecs)
	}
}

func TestPoolContextCancelDiscardsResult(t *testing.T) {
	p := newWorkerPool(1, 1, logger.NewDiscard())
	defer p.close()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = p.submit(context.Background(), func() ([][]float32, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	// The single worker is busy; this caller gives up waiting. The
	// in-flight unit keeps running to completion.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := p.submit(ctx, func() ([][]float32, error) {
		return nil, fmt.Errorf("should be discarded")
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}

	close(release)
}
