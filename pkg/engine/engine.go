// Package engine provides the Lisp evaluation engine for talus recipes.
// It wraps zygomys in a sandboxed environment and produces a recipe.Book
// from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/talus/pkg/recipe"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates recipe scripts. It is safe for concurrent use; every
// evaluation runs in a fresh sandbox, and a newer evaluation supersedes
// any that is still in flight.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine returns an Engine that gives up after EvalTimeout.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// NewEngineWithTimeout returns an Engine with a custom evaluation limit.
// d <= 0 selects EvalTimeout.
func NewEngineWithTimeout(d time.Duration) *Engine {
	if d <= 0 {
		d = EvalTimeout
	}
	return &Engine{timeout: d}
}

// Evaluate runs source and returns the recipes it defines.
//
// Return semantics:
//   - On success: returns book + nil errors + nil error
//   - On parse/eval failure: returns nil book + eval errors + nil error
//   - On fatal failure: returns nil + nil + error wrapping ErrTimeout,
//     ErrSuperseded, ctx.Err() or the recovered panic
func (e *Engine) Evaluate(ctx context.Context, source string) (*recipe.Book, []EvalError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("engine: evaluation abandoned: %w", err)
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()
		b, evalErrs, err := e.evaluate(source)
		ch <- evalResult{book: b, errors: evalErrs, err: err}
	}()

	return e.wait(ctx, ch, gen)
}

// current reports whether gen is still the latest evaluation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*recipe.Book, []EvalError, error) {
	// Empty source is a valid program that produces an empty book.
	if strings.TrimSpace(source) == "" {
		return recipe.New(), nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	book := recipe.New()
	registerBuiltins(env, book)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return book, nil, nil
}

// linePatterns extract a line number from zygomys errors, most specific
// first: "Error on line N: ..." from the parser, "line N: ..." elsewhere.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError converts a zygomys error into EvalError values. Errors
// without a recognisable location get Line 0.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
