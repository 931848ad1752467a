// Package eventloop runs tasks one at a time on a single goroutine. A wall and
// everything it owns are only touched from inside its loop, so the wall needs
// no locks.
package eventloop

import (
	"context"
	"sync"
	"time"
)

const defaultQueueSize = 64

// Loop is a cooperative, single goroutine task runner.
type Loop struct {
	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

// New returns a loop whose queue holds up to queueSize pending tasks before
// Post blocks. queueSize <= 0 uses a default.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Loop{
		tasks:   make(chan func(), queueSize),
		stopped: make(chan struct{}),
	}
}

// Run executes posted tasks in arrival order until ctx is done or Stop is
// called. Each task runs to completion before the next starts.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.stopped:
			return nil
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Post queues fn. It reports false if the loop has stopped; the task is then
// dropped. Post must not be called from inside a task when the queue may be
// full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// AfterFunc posts fn after d. The returned stop function cancels a timer that
// has not fired yet and reports whether it did.
func (l *Loop) AfterFunc(d time.Duration, fn func()) (stop func() bool) {
	t := time.AfterFunc(d, func() { l.Post(fn) })
	return t.Stop
}

// Stop ends Run. Pending tasks are discarded.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}

// Done is closed once the loop has been stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.stopped
}
