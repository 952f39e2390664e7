package types

// PredictionResult is the outcome of one successful inference, before it is persisted.
type PredictionResult struct {
	Filename   string
	Label      string
	Confidence float64
}
