// Package syncutil holds small synchronization helpers.
package syncutil

import "context"

// ContextMutex is a single-entry mutex backed by a buffered channel so that
// waiters can give up when their context ends.
type ContextMutex struct {
	ch chan struct{}
}

func NewContextMutex() *ContextMutex {
	m := &ContextMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{} // Start unlocked.
	return m
}

// LockContext acquires the mutex or returns the context error. On success the
// caller MUST call the returned unlock function.
func (m *ContextMutex) LockContext(ctx context.Context) (func(), error) {
	select {
	case <-m.ch:
		return func() { m.ch <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
