package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	doc, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if doc.ZoneCount() != 0 {
		t.Errorf("expected empty document, got %d zones", doc.ZoneCount())
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	doc, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if doc.ZoneCount() != 0 {
		t.Errorf("expected empty document, got %d zones", doc.ZoneCount())
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := NewEngine()

	// (+ 1 2) is valid Lisp that zygomys can evaluate.
	// It defines no zones, so the document should be empty.
	doc, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
	if doc.ZoneCount() != 0 {
		t.Errorf("expected empty document, got %d zones", doc.ZoneCount())
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	eng := NewEngine()

	source := `
(def x 10)
(def y 20)
(+ x y)
`
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if doc == nil {
		t.Fatal("expected non-nil document")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	// Unmatched paren is a parse error.
	doc, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}

	// The error message should contain something meaningful.
	msg := evalErrs[0].Message
	if msg == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	// Referencing an undefined symbol should produce an eval error.
	doc, evalErrs, err := eng.Evaluate("(+ 1 undefined-symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine()

	// Put the error on line 2.
	source := "(+ 1 2)\n(+ 3"
	doc, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if doc != nil {
		t.Fatal("expected nil document on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// We expect the line number to be extracted from the zygomys error.
	// Line info may or may not be available depending on the error format;
	// we just check the error is populated.
	e := evalErrs[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	// If line info was extracted, verify it's positive.
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	} else {
		t.Logf("no line info extracted (line=0), message=%q", e.Message)
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	// No line info.
	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	s2 := e2.Error()
	if strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()

	// Multiple evaluations of the same source should produce equivalent results.
	for i := 0; i < 5; i++ {
		doc, evalErrs, err := eng.Evaluate("(+ 1 2)")
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if doc == nil {
			t.Fatalf("iteration %d: expected non-nil document", i)
		}
		if doc.ZoneCount() != 0 {
			t.Errorf("iteration %d: expected empty document, got %d zones", i, doc.ZoneCount())
		}
	}
}

func TestNewDefaults(t *testing.T) {
	if got := NewEngine().Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %s, want %s", got, DefaultTimeout)
	}
	if got := New(Config{Timeout: time.Second}).Timeout(); got != time.Second {
		t.Errorf("Timeout() = %s, want 1s", got)
	}
}

func TestWaitTimeout(t *testing.T) {
	// A channel that never sends stands in for a script that never ends.
	eng := New(Config{Timeout: 20 * time.Millisecond, Logger: quietLogger()})
	eng.generation = 1

	_, _, err := eng.wait(context.Background(), make(chan evalResult), 1)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if !strings.Contains(err.Error(), "20ms") {
		t.Errorf("expected the timeout in the message, got %v", err)
	}
}

func TestWaitCanceled(t *testing.T) {
	eng := New(Config{Logger: quietLogger()})
	eng.generation = 1
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := eng.wait(ctx, make(chan evalResult), 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitDiscardsStale(t *testing.T) {
	eng := New(Config{Logger: quietLogger()})
	eng.generation = 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{doc: NewDocument()}

	_, _, err := eng.wait(context.Background(), ch, 1)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
}

func TestEvaluateAfterTimeout(t *testing.T) {
	runaway := `(for [(def i 0) true (def i (+ i 1))] i)`
	eng := New(Config{Timeout: 200 * time.Millisecond, Logger: quietLogger()})

	_, _, err := eng.Evaluate(runaway)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	// Neither this engine nor a fresh one is blocked by the abandoned run.
	for name, next := range map[string]*Engine{
		"same":  eng,
		"fresh": New(Config{Timeout: 2 * time.Second, Logger: quietLogger()}),
	} {
		doc, evalErrs, err := next.Evaluate(`(rect "a" :from (pt 0 0) :to (pt 1 1) :height 1)`)
		if err != nil {
			t.Fatalf("%s engine: unexpected fatal error: %v", name, err)
		}
		if len(evalErrs) > 0 || doc.ZoneCount() != 1 {
			t.Errorf("%s engine: unexpected result: %v, %v", name, evalErrs, doc)
		}
	}
}

func TestEvaluateAbortStopsRun(t *testing.T) {
	abort := make(chan struct{})
	close(abort)

	done := make(chan any, 1)
	go func() {
		defer func() { done <- recover() }()
		NewEngine().evaluate(`(for [(def i 0) true (def i (+ i 1))] i)`, abort)
	}()

	select {
	case r := <-done:
		if r != errAborted {
			t.Errorf("expected the run to stop with errAborted, got %v", r)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("aborted run kept going")
	}
}

func TestEvaluateContextCanceled(t *testing.T) {
	eng := New(Config{Logger: quietLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The evaluation may finish before the select notices the canceled
	// context; either outcome is valid, but a failure must be the context's.
	doc, _, err := eng.EvaluateContext(ctx, `(rect "a" :from (pt 0 0) :to (pt 1 1) :height 1)`)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		return
	}
	if doc.ZoneCount() != 1 {
		t.Errorf("expected 1 zone, got %d", doc.ZoneCount())
	}
}

func TestEvaluateConcurrentCallers(t *testing.T) {
	// Overlapping callers either get their document or ErrSuperseded.
	eng := New(Config{Logger: quietLogger()})
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ok int
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, evalErrs, err := eng.Evaluate(`(rect "a" :from (pt 0 0) :to (pt 1 1) :height 1)`)
			if err != nil {
				if !errors.Is(err, ErrSuperseded) {
					t.Errorf("unexpected fatal error: %v", err)
				}
				return
			}
			if len(evalErrs) > 0 || doc.ZoneCount() != 1 {
				t.Errorf("unexpected result: %v, %v", evalErrs, doc)
				return
			}
			mu.Lock()
			ok++
			mu.Unlock()
		}()
	}
	wg.Wait()
	if ok == 0 {
		t.Error("expected at least one caller to get its document")
	}
}

func quietLogger() logrus.FieldLogger {
	log, _ := test.NewNullLogger()
	return log
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
