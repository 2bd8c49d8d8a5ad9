package store

import (
	"context"
	"errors"
)

// Subscription delivers successive snapshots of a live query. The owner must
// call Close when it no longer wants updates; Close stops the listener and
// waits for it to exit.
type Subscription[T any] struct {
	updates chan T
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

// Emit hands one snapshot to the subscriber. It returns false once the
// subscription is closed and the producer should stop.
type Emit[T any] func(snapshot T) bool

// NewSubscription starts run in its own goroutine. run produces snapshots
// through emit until ctx is cancelled or it fails.
func NewSubscription[T any](parent context.Context, run func(ctx context.Context, emit Emit[T]) error) *Subscription[T] {
	ctx, cancel := context.WithCancel(parent)
	s := &Subscription[T]{
		updates: make(chan T),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	emit := func(snapshot T) bool {
		select {
		case s.updates <- snapshot:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(s.done)
		defer close(s.updates)
		err := run(ctx, emit)
		if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
			s.err = err
		}
	}()
	return s
}

// Updates is closed after the listener exits.
func (s *Subscription[T]) Updates() <-chan T {
	return s.updates
}

func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Err reports why the listener stopped, nil if it was closed. Valid once
// Updates is closed.
func (s *Subscription[T]) Err() error {
	<-s.done
	return s.err
}
