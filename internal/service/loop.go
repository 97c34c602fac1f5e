package service

import (
	"context"
	"errors"
	"sync"
)

// ErrLoopClosed is returned for events submitted after the loop stopped
var ErrLoopClosed = errors.New("event loop closed")

// Loop runs submitted events one at a time on a single goroutine, in arrival
// order. Each event runs to completion before the next starts.
type Loop struct {
	events chan func()
	done   chan struct{}
	once   sync.Once
}

// NewLoop returns a loop with room for buffer pending events
func NewLoop(buffer int) *Loop {
	return &Loop{
		events: make(chan func(), buffer),
		done:   make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled or Close is called
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return
		case <-l.done:
			return
		case fn := <-l.events:
			fn()
		}
	}
}

// Close stops the loop. Pending events are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}

// Submit queues fn and waits until it has run
func (l *Loop) Submit(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	event := func() {
		defer close(finished)
		fn()
	}

	select {
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	case l.events <- event:
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs fn on the loop and returns its result
func Call[T any](ctx context.Context, l *Loop, fn func() (T, error)) (T, error) {
	var (
		out T
		err error
	)
	if serr := l.Submit(ctx, func() { out, err = fn() }); serr != nil {
		var zero T
		return zero, serr
	}
	return out, err
}
