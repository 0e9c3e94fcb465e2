package agent

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Executor is a blocking submit-and-await port bridging tool execution
// onto a different concurrency domain. It is mandatory for remote tool
// origins: remote sessions carry connection state that must not be
// interleaved between conversations.
type Executor interface {
	// Submit runs fn and blocks until it resolves or ctx is done.
	Submit(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error)
}

type serialJob struct {
	ctx  context.Context
	fn   func(ctx context.Context) (string, error)
	done chan serialResult
}

type serialResult struct {
	result string
	err    error
}

// SerialExecutor runs submitted jobs one at a time on a single
// long-lived background goroutine, so remote-session state survives
// across independent ProcessMessage calls and is never interleaved.
type SerialExecutor struct {
	jobs      chan serialJob
	closeOnce sync.Once
	closed    chan struct{}
}

// NewSerialExecutor starts the background worker.
func NewSerialExecutor() *SerialExecutor {
	e := &SerialExecutor{
		jobs:   make(chan serialJob),
		closed: make(chan struct{}),
	}
	go e.worker()
	return e
}

func (e *SerialExecutor) worker() {
	for {
		select {
		case job := <-e.jobs:
			result, err := job.fn(job.ctx)
			job.done <- serialResult{result: result, err: err}
		case <-e.closed:
			return
		}
	}
}

// Submit implements Executor.
func (e *SerialExecutor) Submit(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	job := serialJob{
		ctx:  ctx,
		fn:   fn,
		done: make(chan serialResult, 1),
	}
	select {
	case e.jobs <- job:
	case <-e.closed:
		return "", errors.New("executor is closed")
	case <-ctx.Done():
		return "", errors.WithStack(ctx.Err())
	}
	select {
	case res := <-job.done:
		return res.result, res.err
	case <-ctx.Done():
		return "", errors.WithStack(ctx.Err())
	}
}

// Close stops the background worker. Jobs already running complete;
// subsequent Submit calls fail.
func (e *SerialExecutor) Close() {
	e.closeOnce.Do(func() {
		close(e.closed)
	})
}

var _ Executor = (*SerialExecutor)(nil)
