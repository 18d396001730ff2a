package outbox

import (
	"context"
	"errors"
	"sync"

	"github.com/eapache/queue"
)

var (
	ErrOverflow = errors.New("outbox overflow")
	ErrClosed   = errors.New("outbox closed")
)

// Policy decides what happens to an item sent while limit items are pending.
type Policy uint8

const (
	// CloseOnOverflow gives up on the consumer: the outbox is closed and
	// whatever is still queued is dropped.
	CloseOnOverflow Policy = iota
	// DropOldest discards the oldest pending item to make room and keeps
	// going.
	DropOldest
)

// Outbox hands items from a producer that must never block to a single
// consumer goroutine, preserving order.
type Outbox[T any] struct {
	limit  int
	policy Policy
	wake   chan struct{}

	mu         sync.Mutex
	items      *queue.Queue
	closed     bool
	overflowed bool
	dropped    uint64
}

// New creates an outbox that closes on overflow. A limit of zero or less
// means unbounded.
func New[T any](limit int) *Outbox[T] {
	return NewWithPolicy[T](limit, CloseOnOverflow)
}

func NewWithPolicy[T any](limit int, policy Policy) *Outbox[T] {
	return &Outbox[T]{
		limit:  limit,
		policy: policy,
		wake:   make(chan struct{}, 1),
		items:  queue.New(),
	}
}

// Send enqueues item without blocking.
func (that *Outbox[T]) Send(item T) error {
	that.mu.Lock()

	if that.closed {
		that.mu.Unlock()
		return ErrClosed
	}

	if that.limit > 0 && that.items.Length() >= that.limit && that.policy == DropOldest {
		that.items.Remove()
		that.dropped++
	}

	if that.limit > 0 && that.items.Length() >= that.limit {
		that.closed = true
		that.overflowed = true
		that.mu.Unlock()
		that.signal()

		return ErrOverflow
	}

	that.items.Add(item)
	that.mu.Unlock()
	that.signal()

	return nil
}

// Close stops accepting items. Items already queued are still delivered.
func (that *Outbox[T]) Close() {
	that.mu.Lock()
	that.closed = true
	that.mu.Unlock()

	that.signal()
}

// Dropped counts the items discarded under DropOldest.
func (that *Outbox[T]) Dropped() uint64 {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.dropped
}

func (that *Outbox[T]) Len() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.items.Length()
}

// Run passes queued items to deliver one at a time. It returns nil once the
// outbox is closed and drained, ErrOverflow if the limit was exceeded, the
// context error on cancellation, or the first error from deliver.
func (that *Outbox[T]) Run(ctx context.Context, deliver func(T) error) error {
	for {
		item, ok, err := that.next()
		switch {
		case errors.Is(err, ErrClosed):
			return nil
		case err != nil:
			return err
		}

		if ok {
			if err = deliver(item); err != nil {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-that.wake:
		}
	}
}

func (that *Outbox[T]) next() (T, bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	var zero T

	switch {
	case that.overflowed:
		return zero, false, ErrOverflow
	case that.items.Length() > 0:
		return that.items.Remove().(T), true, nil
	case that.closed:
		return zero, false, ErrClosed
	default:
		return zero, false, nil
	}
}

func (that *Outbox[T]) signal() {
	select {
	case that.wake <- struct{}{}:
	default:
	}
}
