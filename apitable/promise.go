package apitable

import (
	"context"
	"sync"
)

// Promise is the completion of one dispatched intent.
type Promise struct {
	once  sync.Once
	done  chan struct{}
	value interface{}
	err   error
}

func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Resolve completes the promise with value. Only the first Resolve or
// Reject has an effect.
func (p *Promise) Resolve(value interface{}) {
	p.once.Do(func() {
		p.value = value
		close(p.done)
	})
}

func (p *Promise) Reject(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the promise completes or ctx is done.
func (p *Promise) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
