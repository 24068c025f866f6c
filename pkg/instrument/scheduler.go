package instrument

import (
	"context"
	"fmt"
	"sync"

	"digital.vasic.contracts/pkg/logging"
)

// Scheduler runs deferred tasks one at a time, in submission
// order, on a single worker goroutine. Submit never blocks:
// the queue is unbounded.
type Scheduler struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}

	logger  logging.Logger
	onDepth func(int)
}

// NewScheduler starts a scheduler. onDepth, when set, is called
// with the queue length after every change.
func NewScheduler(logger logging.Logger, onDepth func(int)) *Scheduler {
	s := &Scheduler{
		done:    make(chan struct{}),
		logger:  logging.OrNull(logger),
		onDepth: onDepth,
	}
	s.cond = sync.NewCond(&s.mu)
	go s.work()
	return s
}

// Submit queues task. It returns false once the scheduler is
// closed.
func (s *Scheduler) Submit(task func()) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, task)
	depth := len(s.queue)
	s.cond.Signal()
	s.mu.Unlock()

	s.depth(depth)
	return true
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Flush waits until every task submitted before the call has
// run.
func (s *Scheduler) Flush(ctx context.Context) error {
	marker := make(chan struct{})
	if !s.Submit(func() { close(marker) }) {
		marker = s.done
	}
	select {
	case <-marker:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush deferred tasks: %w", ctx.Err())
	}
}

// Close stops accepting tasks, runs the ones already queued and
// waits for the worker to exit. It is safe to call twice.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Signal()
	s.mu.Unlock()
	<-s.done
}

func (s *Scheduler) work() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.queue) == 0 {
			s.mu.Unlock()
			close(s.done)
			return
		}
		task := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		depth := len(s.queue)
		s.mu.Unlock()

		s.depth(depth)
		s.run(task)
	}
}

func (s *Scheduler) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("deferred task panicked", logging.LogField("panic", r))
		}
	}()
	task()
}

func (s *Scheduler) depth(n int) {
	if s.onDepth != nil {
		s.onDepth(n)
	}
}
