package intake

import (
	"sync"
	"time"
)

// Loader models the roster's cosmetic loading indicator: it reports Loading
// for a fixed delay after it is started and Ready from then on. The
// transition happens at most once.
type Loader struct {
	mu    sync.Mutex
	ready bool
	timer *time.Timer
	done  chan struct{}
}

// StartLoader begins the Loading phase. A delay <= 0 starts Ready.
func StartLoader(delay time.Duration) *Loader {
	l := &Loader{done: make(chan struct{})}
	if delay <= 0 {
		l.ready = true
		close(l.done)
		return l
	}
	l.timer = time.AfterFunc(delay, l.finish)
	return l
}

func (l *Loader) finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return
	}
	l.ready = true
	l.timer = nil
	close(l.done)
}

// Loading reports whether the indicator is still showing.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.ready
}

// Done is closed when the loader becomes Ready. It is never closed for a
// loader cancelled before its delay elapsed.
func (l *Loader) Done() <-chan struct{} {
	return l.done
}

// Cancel stops a pending transition. It returns true if the transition was
// still pending. Cancelling a Ready loader is a no-op.
func (l *Loader) Cancel() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer == nil {
		return false
	}
	stopped := l.timer.Stop()
	l.timer = nil
	return stopped
}
