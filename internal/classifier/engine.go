package classifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Engine owns the process-wide model handle. Load runs once at startup; after
// that the handle is read-only. Forward passes are serialized through a single
// slot because runtimes are not assumed to be safe for concurrent Run calls.
type Engine struct {
	open    Opener
	timeout time.Duration

	mu        sync.RWMutex
	attempted bool
	path      string
	rt        Runtime
	loadErr   error

	slot chan struct{} // size 1: single in-flight forward pass
}

// NewEngine returns an engine that opens models with open. A positive timeout
// bounds each Infer call (waiting for the slot plus the forward pass).
func NewEngine(open Opener, timeout time.Duration) *Engine {
	if timeout < 0 {
		timeout = 0
	}
	return &Engine{open: open, timeout: timeout, slot: make(chan struct{}, 1)}
}

// Load opens the model artifact. It may be called once; on failure the handle
// stays unset and every Infer returns ErrModelNotLoaded. There is no lazy reload.
func (e *Engine) Load(modelPath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempted {
		return errors.New("engine: Load already called")
	}
	e.attempted = true
	e.path = modelPath
	if e.open == nil {
		e.loadErr = loadError{path: modelPath, err: ErrDependencyUnavailable("no model runtime configured")}
		return e.loadErr
	}
	rt, err := e.open(modelPath)
	if err == nil && rt == nil {
		err = errors.New("runtime opener returned nil")
	}
	if err != nil {
		e.loadErr = loadError{path: modelPath, err: err}
		return e.loadErr
	}
	e.rt = rt
	return nil
}

// Ready reports whether a model handle is loaded.
func (e *Engine) Ready() bool { return e.runtime() != nil }

// LoadErr returns the load failure, if any.
func (e *Engine) LoadErr() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadErr
}

// ModelPath returns the path passed to Load.
func (e *Engine) ModelPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.path
}

// InputShape returns the model input shape, or nil when not loaded.
func (e *Engine) InputShape() []int64 {
	if rt := e.runtime(); rt != nil {
		return append([]int64(nil), rt.InputShape()...)
	}
	return nil
}

// Outputs returns the declared model outputs, or nil when not loaded.
func (e *Engine) Outputs() []OutputInfo {
	if rt := e.runtime(); rt != nil {
		return rt.Outputs()
	}
	return nil
}

// Close releases the model handle after waiting for an in-flight pass.
func (e *Engine) Close() error {
	e.slot <- struct{}{}
	defer func() { <-e.slot }()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rt == nil {
		return nil
	}
	err := e.rt.Close()
	e.rt = nil
	return err
}

func (e *Engine) runtime() Runtime {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rt
}

type inferResult struct {
	out RawOutput
	err error
}

// Infer runs one forward pass. It fails fast with ErrModelNotLoaded when no
// handle is set. When the deadline expires it returns InferenceTimeout; the
// forward pass itself is not interrupted and releases the slot when it ends.
func (e *Engine) Infer(ctx context.Context, in Tensor) (RawOutput, error) {
	rt := e.runtime()
	if rt == nil {
		return RawOutput{}, ErrModelNotLoaded
	}
	if err := in.Validate(); err != nil {
		return RawOutput{}, inferenceError{err: err}
	}
	if want := rt.InputShape(); !shapeMatches(want, in.Shape) {
		return RawOutput{}, inferenceError{err: fmt.Errorf("input shape %v does not match model input %v", in.Shape, want)}
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		return RawOutput{}, e.ctxErr(ctx)
	}

	start := time.Now()
	done := make(chan inferResult, 1)
	go func() {
		defer func() { <-e.slot }()
		defer func() {
			if r := recover(); r != nil {
				done <- inferResult{err: fmt.Errorf("runtime panic: %v", r)}
			}
		}()
		out, err := rt.Run(in)
		done <- inferResult{out: out, err: err}
	}()

	select {
	case res := <-done:
		inferenceDuration.Observe(time.Since(start).Seconds())
		if res.err != nil {
			return RawOutput{}, inferenceError{err: res.err}
		}
		return res.out, nil
	case <-ctx.Done():
		return RawOutput{}, e.ctxErr(ctx)
	}
}

func (e *Engine) ctxErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return inferenceTimeoutError{after: e.timeout}
	}
	return inferenceError{err: ctx.Err()}
}

// shapeMatches compares shapes treating non-positive model dims as dynamic.
func shapeMatches(model, got []int64) bool {
	if len(model) == 0 {
		return true
	}
	if len(model) != len(got) {
		return false
	}
	for i, d := range model {
		if d > 0 && d != got[i] {
			return false
		}
	}
	return true
}
