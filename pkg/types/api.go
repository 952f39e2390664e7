package types

// UploadResponse is returned by POST /upload on success.
type UploadResponse struct {
	// Stored (sanitized) filename of the uploaded image.
	// example: cat_01.jpg
	Filename string `json:"filename" example:"cat_01.jpg"`
	// Predicted class label.
	// example: tabby
	Prediction string `json:"prediction" example:"tabby"`
	// Score of the predicted class in [0,1].
	// example: 0.93
	Confidence float64 `json:"confidence" example:"0.93"`
}

// Prediction is one persisted prediction row, as returned by GET /predictions.
type Prediction struct {
	// Auto-incrementing record identifier.
	// example: 1
	ID int64 `json:"id" example:"1"`
	// Stored filename the prediction refers to.
	// example: cat_01.jpg
	Filename string `json:"filename" example:"cat_01.jpg"`
	// Predicted class label.
	// example: tabby
	Prediction string `json:"prediction" example:"tabby"`
	// Score of the predicted class in [0,1].
	// example: 0.93
	Confidence float64 `json:"confidence" example:"0.93"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Invalid file type
	Error string `json:"error" example:"Invalid file type"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// SanityReport describes startup checks of the inference path.
type SanityReport struct {
	// True when the model was loaded successfully.
	ModelLoaded bool `json:"model_loaded"`
	// Number of labels in the class catalog.
	// example: 1000
	CatalogSize int `json:"catalog_size" example:"1000"`
	// Number of classes the model emits per image (0 if unknown).
	// example: 1000
	OutputClasses int `json:"output_classes" example:"1000"`
	// Catalog/model mismatch or load failure, if any.
	Error string `json:"error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// True when the model handle is loaded and inference can run.
	ModelLoaded bool `json:"model_loaded"`
	// Path of the model artifact.
	// example: /var/lib/imgclassd/model.onnx
	ModelPath string `json:"model_path" example:"/var/lib/imgclassd/model.onnx"`
	// Load failure, if the model could not be loaded.
	LoadError string `json:"load_error,omitempty"`
	// Model input shape.
	// example: [1,224,224,3]
	InputShape []int64 `json:"input_shape,omitempty"`
	// Successful predictions since process start.
	// example: 12
	PredictionsTotal uint64 `json:"predictions_total" example:"12"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Startup sanity checks.
	Sanity SanityReport `json:"sanity"`
}
