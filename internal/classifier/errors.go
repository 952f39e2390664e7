package classifier

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Messages surfaced to clients for validation failures.
const (
	MsgNoFilePart     = "No file part"
	MsgNoSelectedFile = "No selected file"
	MsgInvalidType    = "Invalid file type"
	MsgModelNotLoaded = "Model not loaded"
)

// validationError is a client fault in the upload input (400).
type validationError struct{ msg string }

func (e validationError) Error() string   { return e.msg }
func (e validationError) StatusCode() int { return http.StatusBadRequest }

// ErrValidation constructs a validationError with a client-facing message.
func ErrValidation(msg string) error { return validationError{msg: msg} }

// IsValidation reports whether err is a rejected upload.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// preprocessError signals corrupt or unsupported image bytes (400).
type preprocessError struct{ err error }

func (e preprocessError) Error() string   { return "invalid image: " + e.err.Error() }
func (e preprocessError) Unwrap() error   { return e.err }
func (e preprocessError) StatusCode() int { return http.StatusBadRequest }

// IsPreprocess reports whether err came from decoding or preprocessing an image.
func IsPreprocess(err error) bool {
	var p preprocessError
	return errors.As(err, &p)
}

// modelNotLoadedError is returned by every inference attempt when Load never succeeded.
type modelNotLoadedError struct{}

func (modelNotLoadedError) Error() string { return MsgModelNotLoaded }

// ErrModelNotLoaded is the sentinel returned while no model handle is set.
var ErrModelNotLoaded error = modelNotLoadedError{}

// IsModelNotLoaded reports whether err indicates the model handle is unset.
func IsModelNotLoaded(err error) bool {
	var m modelNotLoadedError
	return errors.As(err, &m)
}

// loadError is a startup failure to open the model artifact.
type loadError struct {
	path string
	err  error
}

func (e loadError) Error() string { return fmt.Sprintf("load model %s: %v", e.path, e.err) }
func (e loadError) Unwrap() error { return e.err }

// IsLoad reports whether err is a model load failure.
func IsLoad(err error) bool {
	var l loadError
	return errors.As(err, &l)
}

// indexOutOfRangeError means the model emitted a class the catalog does not know.
type indexOutOfRangeError struct{ index, size int }

func (e indexOutOfRangeError) Error() string {
	return fmt.Sprintf("class index %d out of range for catalog of %d labels", e.index, e.size)
}

// IsIndexOutOfRange reports whether err is a catalog/model mismatch.
func IsIndexOutOfRange(err error) bool {
	var i indexOutOfRangeError
	return errors.As(err, &i)
}

// inferenceError wraps unexpected failures inside the forward pass or its output.
type inferenceError struct{ err error }

func (e inferenceError) Error() string { return "inference failed: " + e.err.Error() }
func (e inferenceError) Unwrap() error { return e.err }

// IsInference reports whether err is a forward-pass failure.
func IsInference(err error) bool {
	var i inferenceError
	return errors.As(err, &i)
}

// inferenceTimeoutError is returned when the engine or caller deadline expires.
// after is zero when the deadline came from the caller's context.
type inferenceTimeoutError struct{ after time.Duration }

func (e inferenceTimeoutError) Error() string {
	if e.after <= 0 {
		return "inference timed out"
	}
	return "inference timed out after " + e.after.String()
}

// IsInferenceTimeout reports whether err is an expired inference deadline.
func IsInferenceTimeout(err error) bool {
	var i inferenceTimeoutError
	return errors.As(err, &i)
}

// storeError wraps persistence failures, for both files and prediction records.
type storeError struct {
	op  string
	err error
}

func (e storeError) Error() string { return e.op + ": " + e.err.Error() }
func (e storeError) Unwrap() error { return e.err }

// IsStore reports whether err is a persistence failure.
func IsStore(err error) bool {
	var s storeError
	return errors.As(err, &s)
}

// dependencyUnavailableError signals a runtime that was not compiled in.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var d dependencyUnavailableError
	return errors.As(err, &d)
}
