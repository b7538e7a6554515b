package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout is the time limit for a single evaluation.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past the engine timeout.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned when a newer evaluation started first.
	ErrSuperseded = errors.New("evaluation superseded by newer request")

	// errAborted stops a run nobody is waiting for.
	errAborted = errors.New("evaluation aborted")
)

type evalResult struct {
	doc    *Document
	errors []EvalError
	err    error
}

// wait returns the result from ch unless the timeout or ctx ends first. A
// result whose generation is no longer current is discarded. An abandoned
// run is aborted by its caller and finishes into the buffered channel.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult, gen uint64) (*Document, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		current := e.generation
		e.mu.Unlock()
		if gen != current {
			return nil, nil, ErrSuperseded
		}
		return res.doc, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)

	case <-ctx.Done():
		return nil, nil, fmt.Errorf("evaluation canceled: %w", ctx.Err())
	}
}
