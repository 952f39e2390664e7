package httpapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"imgclassd/internal/classifier"
)

// classifier's unexported error types are reached through a real engine.
func engineErrors(t *testing.T) (timeout, inference error) {
	t.Helper()
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	eng := classifier.NewEngine(func(string) (classifier.Runtime, error) {
		return &stubRuntime{block: block}, nil
	}, time.Millisecond)
	if err := eng.Load("m"); err != nil {
		t.Fatalf("load: %v", err)
	}
	in := classifier.Tensor{Shape: []int64{1, 1}, Data: []float32{0}}
	_, timeout = eng.Infer(context.Background(), in)

	eng2 := classifier.NewEngine(func(string) (classifier.Runtime, error) {
		return &stubRuntime{err: errors.New("secret cause")}, nil
	}, 0)
	_ = eng2.Load("m")
	_, inference = eng2.Infer(context.Background(), in)
	return timeout, inference
}

func TestMapErrorHidesInternalCauses(t *testing.T) {
	timeout, inference := engineErrors(t)
	cases := []struct {
		err    error
		status int
		msg    string
		reason string
	}{
		{classifier.ErrValidation(classifier.MsgNoSelectedFile), 400, "No selected file", "no_selected_file"},
		{classifier.ErrValidation(classifier.MsgInvalidType), 400, "Invalid file type", "invalid_type"},
		{classifier.ErrModelNotLoaded, 500, "Model not loaded", "model_not_loaded"},
		{timeout, 500, "inference timed out", "inference_timeout"},
		{inference, 500, "inference failed", "inference_error"},
		{errors.New("boom"), 500, "internal error", "internal"},
	}
	for _, c := range cases {
		status, msg := mapError(c.err)
		if status != c.status || msg != c.msg {
			t.Fatalf("%v: got (%d,%q) want (%d,%q)", c.err, status, msg, c.status, c.msg)
		}
		if got := rejectionReason(c.err); got != c.reason {
			t.Fatalf("%v: reason %q want %q", c.err, got, c.reason)
		}
	}
	if status, _ := mapError(inference); status != http.StatusInternalServerError {
		t.Fatalf("inference status %d", status)
	}
}

type stubRuntime struct {
	block chan struct{}
	err   error
}

func (s *stubRuntime) Run(classifier.Tensor) (classifier.RawOutput, error) {
	if s.block != nil {
		<-s.block
	}
	return classifier.RawOutput{}, s.err
}
func (s *stubRuntime) InputShape() []int64               { return nil }
func (s *stubRuntime) Outputs() []classifier.OutputInfo { return nil }
func (s *stubRuntime) Close() error                      { return nil }
