// Package engine evaluates biomimic recipes. A recipe is a small Lisp
// program, run in a sandboxed zygomys environment, whose builtins collect
// generation requests:
//
//	(def soft (preset :density 0.3 :organic-bias 0.8))
//	(design :seed 7 :algorithm :gyroid :preset soft)
//	(sweep :from 100 :count 4 :algorithm :honeycomb :complexity 0.9)
//
// Evaluation only builds the request list; generating the meshes is left to
// the caller (see Recipe.Requests and generator.Generator.GenerateAll).
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/biomimic/pkg/generator"
)

const (
	// MaxEntries caps the designs a single recipe may request.
	MaxEntries = 5000
	// MaxSweep caps the count of a single sweep.
	MaxSweep = 1000
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in recipe code.
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

// EvalWarning is a non-fatal finding, such as an unknown keyword. Entry is
// the index of the recipe entry being built when it was raised.
type EvalWarning struct {
	Entry   int
	Message string
}

// Entry is one requested design.
type Entry struct {
	Name    string
	Request generator.Request
}

// Recipe is the output of a successful evaluation.
type Recipe struct {
	Entries  []Entry
	Warnings []EvalWarning
}

// Requests returns the generation requests in source order.
func (r *Recipe) Requests() []generator.Request {
	reqs := make([]generator.Request, len(r.Entries))
	for i, e := range r.Entries {
		reqs[i] = e.Request
	}
	return reqs
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment.
type Engine struct {
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine with the default EvalTimeout.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// NewEngineWithTimeout returns an engine that waits at most d per evaluation.
func NewEngineWithTimeout(d time.Duration) *Engine {
	if d <= 0 {
		d = EvalTimeout
	}
	return &Engine{timeout: d}
}

// Evaluate runs recipe source and returns the collected designs.
//
// Return semantics:
//   - On success: returns recipe + nil errors + nil error
//   - On parse/eval failure: returns nil recipe + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Recipe, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		r, evalErrs, err := evaluate(source)
		ch <- evalResult{recipe: r, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the zygomys evaluation in a fresh sandbox.
func evaluate(source string) (*Recipe, []EvalError, error) {
	recipe := &Recipe{}
	if strings.TrimSpace(source) == "" {
		return recipe, nil, nil
	}

	// Sandbox mode keeps recipes away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, recipe)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return recipe, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
