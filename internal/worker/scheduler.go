package worker

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs single-shot deferred tasks on the pool. Pending timers are
// tied to the scheduler's context: Stop drops anything not yet fired, so
// resolution is best-effort and not durable across restarts.
type Scheduler struct {
	pool   *Pool
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewScheduler(pool *Pool) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{pool: pool, ctx: ctx, cancel: cancel}
}

// AfterFunc submits f to the pool once d has elapsed. Calls after Stop are
// dropped: settlement timers arm follow-up timers from pool jobs, so this
// can race with shutdown.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	t := time.NewTimer(d)
	go func() {
		defer s.wg.Done()
		select {
		case <-t.C:
			s.pool.Submit(f)
		case <-s.ctx.Done():
			t.Stop()
		}
	}()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}
