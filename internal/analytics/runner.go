package analytics

import (
	"context"
	"sync"
)

type (
	// Runner serializes publication of recomputed results so that only the
	// most-recently-started pass ever surfaces its output. Each Begin call
	// stamps a pass with a monotonically increasing sequence number and
	// cancels the context of the previous pass; a superseded pass may still
	// run to completion but its Publish is a silent no-op.
	Runner[T any] struct {
		mutex sync.Mutex

		seq        uint64
		cancelPrev context.CancelFunc

		result    T
		resultSeq uint64
		hasResult bool
	}

	// Pass is one stamped aggregation invocation.
	Pass[T any] struct {
		seq    uint64
		ctx    context.Context
		runner *Runner[T]
	}
)

// NewRunner creates an empty runner.
func NewRunner[T any]() *Runner[T] {
	return &Runner[T]{}
}

// Begin stamps a new pass and cancels the previous one's context. The
// cancellation is an early-abort optimization only; correctness comes from
// the sequence check in Publish.
func (r *Runner[T]) Begin(parent context.Context) *Pass[T] {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.cancelPrev != nil {
		r.cancelPrev()
	}

	ctx, cancel := context.WithCancel(parent)

	r.seq++
	r.cancelPrev = cancel

	return &Pass[T]{seq: r.seq, ctx: ctx, runner: r}
}

// Context returns the pass-scoped context. It is cancelled when a newer pass
// begins.
func (p *Pass[T]) Context() context.Context {
	return p.ctx
}

// Publish surfaces the pass result if and only if no newer pass has begun.
// Returns false when the pass was superseded and the result discarded.
func (p *Pass[T]) Publish(result T) bool {
	r := p.runner

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if p.seq != r.seq {
		return false
	}

	r.result = result
	r.resultSeq = p.seq
	r.hasResult = true

	return true
}

// Superseded reports whether a newer pass has begun since this one.
func (p *Pass[T]) Superseded() bool {
	r := p.runner

	r.mutex.Lock()
	defer r.mutex.Unlock()

	return p.seq != r.seq
}

// Latest returns the most recently published result.
func (r *Runner[T]) Latest() (T, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.result, r.hasResult
}
