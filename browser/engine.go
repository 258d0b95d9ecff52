package browser

import (
	"context"
	"time"

	"github.com/streamcap/streamcap/stream"
)

// Engine captures candidates with pooled pages.
type Engine struct {
	Pool        *Pool
	Interceptor *Interceptor
	CollectAll  bool
}

// NewEngine wires a pool and an interceptor from opts.
func NewEngine(opts Options) *Engine {
	return &Engine{
		Pool:        NewPool(opts),
		Interceptor: NewInterceptor(opts),
		CollectAll:  opts.CollectAll,
	}
}

// Capture renders the candidate's entry page in its own slot and waits up to wait for a playlist URL.
func (e *Engine) Capture(ctx context.Context, c stream.Candidate, wait time.Duration) ([]string, error) {
	session, err := e.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	return e.Interceptor.Capture(ctx, session, c.EntryURL, wait, e.CollectAll)
}

// Close releases the browser.
func (e *Engine) Close() error {
	return e.Pool.Close()
}
