package scraper

import "context"

// envelope wraps a queue payload or a poison sentinel.
type envelope[T any] struct {
	payload T
	poison  bool
}

// workQueue is a bounded FIFO connecting two pipeline stages. Receiving is
// the only blocking point in a worker loop; a poison envelope tells the
// receiving worker to stop.
type workQueue[T any] struct {
	ch chan envelope[T]
}

func newWorkQueue[T any](depth int) *workQueue[T] {
	if depth <= 0 {
		depth = 1
	}
	return &workQueue[T]{ch: make(chan envelope[T], depth)}
}

// Put enqueues a payload, blocking while the queue is full.
func (q *workQueue[T]) Put(ctx context.Context, v T) error {
	select {
	case q.ch <- envelope[T]{payload: v}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Poison enqueues one stop sentinel. Each worker consumes at most one.
func (q *workQueue[T]) Poison(ctx context.Context) error {
	select {
	case q.ch <- envelope[T]{poison: true}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get blocks for the next payload. ok is false on a sentinel or when the
// context is canceled.
func (q *workQueue[T]) Get(ctx context.Context) (T, bool) {
	var zero T
	select {
	case env := <-q.ch:
		if env.poison {
			return zero, false
		}
		return env.payload, true
	case <-ctx.Done():
		return zero, false
	}
}

// Len reports the number of buffered envelopes, sentinels included.
func (q *workQueue[T]) Len() int { return len(q.ch) }
