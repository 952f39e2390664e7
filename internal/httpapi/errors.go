package httpapi

import (
	"encoding/json"
	"net/http"

	"imgclassd/internal/classifier"
	"imgclassd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// mapError returns the status code and client-facing message for err.
// Client faults carry their own status and message; server faults get a
// fixed message so internal causes stay in the logs.
func mapError(err error) (int, string) {
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode(), he.Error()
	}
	switch {
	case classifier.IsModelNotLoaded(err):
		return http.StatusInternalServerError, classifier.MsgModelNotLoaded
	case classifier.IsInferenceTimeout(err):
		return http.StatusInternalServerError, "inference timed out"
	case classifier.IsIndexOutOfRange(err):
		return http.StatusInternalServerError, "prediction does not match the class catalog"
	case classifier.IsInference(err):
		return http.StatusInternalServerError, "inference failed"
	case classifier.IsStore(err):
		return http.StatusInternalServerError, "storage failure"
	}
	return http.StatusInternalServerError, "internal error"
}

// rejectionReason labels a failed upload for the rejection counter.
func rejectionReason(err error) string {
	switch {
	case classifier.IsValidation(err):
		switch err.Error() {
		case classifier.MsgNoFilePart:
			return "no_file_part"
		case classifier.MsgNoSelectedFile:
			return "no_selected_file"
		case classifier.MsgInvalidType:
			return "invalid_type"
		}
		return "invalid_request"
	case classifier.IsPreprocess(err):
		return "invalid_image"
	case classifier.IsModelNotLoaded(err):
		return "model_not_loaded"
	case classifier.IsInferenceTimeout(err):
		return "inference_timeout"
	case classifier.IsIndexOutOfRange(err):
		return "catalog_mismatch"
	case classifier.IsInference(err):
		return "inference_error"
	case classifier.IsStore(err):
		return "store_error"
	}
	return "internal"
}
