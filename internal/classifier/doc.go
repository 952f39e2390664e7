// Package classifier implements the upload → preprocess → infer → decode →
// persist pipeline. It is structured into small files by concern:
//
//   - catalog.go: Catalog (output index → label) and label file loading.
//   - preprocess.go: Preprocessor, image bytes → normalized input Tensor.
//   - runtime.go: Tensor/RawOutput and the Runtime interface a model backend implements.
//   - engine.go: Engine, the load-once model handle with serialized forward passes.
//   - decode.go: Decoder, arg-max over the authoritative output → label + confidence.
//   - files.go: FileStore, sanitized and collision-safe upload persistence.
//   - service.go: Service, the upload state machine and prediction queries.
//   - errors.go: error kinds and helpers (IsValidation, IsModelNotLoaded, ...).
//   - events.go, eventpub_memory.go: EventPublisher and an in-memory implementation.
//   - metrics.go: Prometheus collectors for inference and uploads.
//   - sanity.go, status_report.go: startup checks and /status reporting.
//
// The concrete ONNX runtime lives in internal/onnxrt and is only compiled with
// the 'onnx' build tag. Default builds get a stub that reports the dependency
// as unavailable, so the service starts but never becomes ready.
package classifier
