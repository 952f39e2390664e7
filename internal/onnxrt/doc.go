// Package onnxrt runs classifier models with ONNX Runtime through
// github.com/yalue/onnxruntime_go. The real implementation needs cgo and the
// onnxruntime shared library, so it is only compiled with -tags onnx; default
// builds get a stub whose opener reports a missing dependency.
package onnxrt

// Options configures how sessions are created.
type Options struct {
	// LibraryPath points at libonnxruntime. Empty uses the library default.
	LibraryPath string
	// InputShape fills dynamic (non-positive) input dimensions.
	InputShape []int64
}
