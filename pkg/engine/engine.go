// Package engine provides the Lisp evaluation engine for zone scripts.
// It wraps zygomys in a sandboxed environment and produces a Document of
// zone definitions and section planes from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/sirupsen/logrus"
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

// EvalWarning is a finding that does not stop evaluation, attached to the
// zone it concerns.
type EvalWarning struct {
	ZoneID  string
	Message string
}

func (w EvalWarning) Error() string {
	return fmt.Sprintf("zone %s: %s", w.ZoneID, w.Message)
}

// Config configures an Engine.
type Config struct {
	Timeout time.Duration      // DefaultTimeout when zero
	Logger  logrus.FieldLogger // logrus standard logger when nil
}

// sandboxMu serializes sandbox construction across engines. zygomys
// touches package-level registries while building an environment; running
// one only touches its own state.
var sandboxMu sync.Mutex

// Engine wraps the zygomys interpreter for zone script evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	timeout time.Duration
	log     logrus.FieldLogger

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine with the default timeout.
func NewEngine() *Engine {
	return New(Config{})
}

// New creates an Engine from cfg.
func New(cfg Config) *Engine {
	e := &Engine{timeout: cfg.Timeout, log: cfg.Logger}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.log == nil {
		e.log = logrus.StandardLogger()
	}
	return e
}

// Timeout returns the evaluation time limit.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Evaluate is EvaluateContext with a background context.
func (e *Engine) Evaluate(source string) (*Document, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext runs source and returns the document it builds.
//
// Return semantics:
//   - On success: returns document + nil errors + nil error
//   - On parse/eval failure: returns nil document + eval errors + nil error
//   - On fatal failure: returns nil + nil + error wrapping ErrTimeout,
//     ErrSuperseded, the context error, or describing a panic
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Document, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	abort := make(chan struct{})
	defer close(abort)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if r == errAborted {
					ch <- evalResult{err: errAborted}
					return
				}
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		doc, evalErrs, err := e.evaluate(source, abort)
		ch <- evalResult{doc: doc, errors: evalErrs, err: err}
	}()

	doc, evalErrs, err := e.wait(ctx, ch, gen)
	if err != nil {
		e.log.WithError(err).WithField("generation", gen).Warn("evaluation abandoned")
	}
	return doc, evalErrs, err
}

// evaluate runs source in a fresh sandbox. Once abort is closed the run
// stops at its next function call.
func (e *Engine) evaluate(source string, abort <-chan struct{}) (*Document, []EvalError, error) {
	// Empty source is a valid program that produces an empty document.
	if strings.TrimSpace(source) == "" {
		return NewDocument(), nil, nil
	}

	doc := NewDocument()
	env := newSandbox(doc)
	defer env.Stop()
	env.AddPreHook(func(*zygo.Zlisp, string, []zygo.Sexp) {
		select {
		case <-abort:
			panic(errAborted)
		default:
		}
	})

	// Load and compile the source string into bytecode.
	err := env.LoadString(preprocessSource(source))
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	// Execute the compiled bytecode.
	_, err = env.Run()
	if err != nil {
		evalErrs := parseZygomysError(err)
		return nil, evalErrs, nil
	}

	return doc, nil, nil
}

// newSandbox builds a sandboxed environment with the zone builtins bound
// to doc. Sandbox mode keeps user code away from the filesystem and
// syscalls.
func newSandbox(doc *Document) *zygo.Zlisp {
	sandboxMu.Lock()
	defer sandboxMu.Unlock()
	env := zygo.NewZlispSandbox()
	registerBuiltins(env, doc)
	return env
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// Try to extract line numbers from the error message.
	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Line:    0,
		Col:     0,
		Message: strings.TrimSpace(msg),
	}}
}
