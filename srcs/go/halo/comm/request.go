package comm

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/lsds/halo/srcs/go/utils"
)

var (
	ErrRequestConsumed = errors.New("request already waited")
	ErrNullRequest     = errors.New("wait on null request")
)

// Request is the handle of one in-flight operation.
// It must be completed by exactly one successful Wait.
type Request struct {
	name     string
	done     chan struct{}
	err      error
	consumed atomic.Bool
}

func start(name string, f func() error) *Request {
	r := &Request{
		name: name,
		done: make(chan struct{}),
	}
	go func() {
		r.err = f()
		close(r.done)
	}()
	return r
}

func (r *Request) String() string {
	if r == nil {
		return "<null>"
	}
	return r.name
}

// Wait blocks until the operation completes and consumes the request.
// If ctx is done first the request stays live and ctx.Err() is returned.
func (r *Request) Wait(ctx context.Context) error {
	if r == nil {
		return ErrNullRequest
	}
	if r.consumed.Load() {
		return ErrRequestConsumed
	}
	if !r.Test() {
		select {
		case <-r.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !r.consumed.CompareAndSwap(false, true) {
		return ErrRequestConsumed
	}
	return r.err
}

// Test reports whether the operation has completed, without consuming it.
func (r *Request) Test() bool {
	if r == nil {
		return false
	}
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// WaitAll waits every request, even after one has failed.
func WaitAll(ctx context.Context, rs ...*Request) error {
	errs := make([]error, len(rs))
	for i, r := range rs {
		errs[i] = r.Wait(ctx)
	}
	return utils.MergeErrors(errs, "wait")
}
