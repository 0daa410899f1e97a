package engine

import (
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
	// ErrTimeout is returned when a description runs past the timeout.
	ErrTimeout = errors.New("evaluation timed out")
)

// evalResult carries one sandbox run back to the caller.
type evalResult struct {
	program *Program
	errors  []EvalError
	err     error
}

// timeout returns the configured limit, EvalTimeout when unset.
func (e *Engine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return EvalTimeout
}

// current reports whether gen is still the latest evaluation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// wait blocks for the run of generation gen. A run that outlives the
// timeout keeps going in its goroutine; whatever it defines is dropped.
// So is the program of a run that a newer Evaluate overtook.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) (*Program, []EvalError, error) {
	limit := e.timeout()
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.program, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, limit)
	}
}
