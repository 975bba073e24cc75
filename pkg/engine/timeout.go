package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/talus/pkg/recipe"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation outlives the engine's limit.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to an evaluation whose result arrived after
	// a newer one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

type evalResult struct {
	book   *recipe.Book
	errors []EvalError
	err    error
}

// wait blocks until ch delivers, ctx ends or the engine's limit passes,
// whichever is first. The evaluating goroutine is not stopped on timeout;
// its late result is dropped by the buffered channel.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult, gen uint64) (*recipe.Book, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.book, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("engine: evaluation abandoned: %w", ctx.Err())
	}
}
