package server

import (
	"context"
	"sync"
	"time"
)

// sessionTracker records live sessions so graceful shutdown can close them
// and wait for their goroutines to finish.
type sessionTracker struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	wg       sync.WaitGroup
}

func newSessionTracker() *sessionTracker {
	return &sessionTracker{sessions: make(map[*Session]struct{})}
}

// run executes the session on its own goroutine and keeps it tracked for the
// session's lifetime.
func (t *sessionTracker) run(s *Session) {
	t.mu.Lock()
	t.sessions[s] = struct{}{}
	t.mu.Unlock()

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.remove(s)
		s.Run()
	}()
}

func (t *sessionTracker) remove(s *Session) {
	t.mu.Lock()
	delete(t.sessions, s)
	t.mu.Unlock()
}

// closeAll force-closes every live connection and waits up to timeout for
// the session goroutines to drain. Returns context.DeadlineExceeded if some
// are still running when the timeout fires.
func (t *sessionTracker) closeAll(timeout time.Duration) error {
	t.mu.Lock()
	sessions := make([]*Session, 0, len(t.sessions))
	for s := range t.sessions {
		sessions = append(sessions, s)
	}
	t.mu.Unlock()

	for _, s := range sessions {
		s.closeConn()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
