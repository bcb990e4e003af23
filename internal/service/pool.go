package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"semsearch/internal/logger"
)

// task is one unit of blocking work handed to the pool. The result is
// delivered on a dedicated buffered channel so an abandoned caller
// never blocks a worker.
type task struct {
	id     string
	run    func() ([][]float32, error)
	result chan taskResult
}

type taskResult struct {
	vectors [][]float32
	err     error
}

// workerPool runs blocking model computation on a fixed number of
// workers. Admission is FIFO through a buffered channel; there is no
// priority and no cancellation of in-flight work.
type workerPool struct {
	log   *logger.Logger
	tasks chan task
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func newWorkerPool(workers, queueSize int, log *logger.Logger) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &workerPool{
		log:   log,
		tasks: make(chan task, queueSize),
		done:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	return p
}

func (p *workerPool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case t := <-p.tasks:
			vectors, err := p.runTask(id, t)
			t.result <- taskResult{vectors: vectors, err: err}
		}
	}
}

func (p *workerPool) runTask(workerID int, t task) (vectors [][]float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("task %s panicked on worker %d: %v", t.id, workerID, r)
			err = &InfrastructureError{Reason: fmt.Sprintf("task panicked: %v", r)}
		}
	}()
	p.log.Debug("task %s running on worker %d", t.id, workerID)
	return t.run()
}

// submit enqueues fn and waits for its result. A cancelled ctx abandons
// the wait; the unit of work still runs to completion and its result is
// discarded.
func (p *workerPool) submit(ctx context.Context, fn func() ([][]float32, error)) ([][]float32, error) {
	t := task{
		id:     uuid.NewString(),
		run:    fn,
		result: make(chan taskResult, 1),
	}

	select {
	case <-p.done:
		return nil, &InfrastructureError{Reason: "worker pool closed"}
	case <-ctx.Done():
		return nil, ctx.Err()
	case p.tasks <- t:
	}

	select {
	case res := <-t.result:
		return res.vectors, res.err
	case <-ctx.Done():
		p.log.Debug("task %s result discarded: %v", t.id, ctx.Err())
		return nil, ctx.Err()
	case <-p.done:
		// The pool shut down while we waited; pick up a result that may
		// have landed just before the workers stopped.
		select {
		case res := <-t.result:
			return res.vectors, res.err
		default:
			return nil, &InfrastructureError{Reason: "worker pool closed"}
		}
	}
}

// close stops the workers. Queued tasks that no worker picked up are
// abandoned.
func (p *workerPool) close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
