//go:build !onnx

package onnxrt

import "imgclassd/internal/classifier"

// Available reports whether ONNX support was compiled in.
func Available() bool { return false }

// Shutdown is a no-op without ONNX support.
func Shutdown() error { return nil }

// NewOpener returns an opener that always fails: this binary was built
// without the onnx tag.
func NewOpener(Options) classifier.Opener {
	return func(string) (classifier.Runtime, error) {
		return nil, classifier.ErrDependencyUnavailable("ONNX runtime not compiled in (rebuild with -tags onnx)")
	}
}
