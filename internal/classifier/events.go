package classifier

// Event names published by the Service.
const (
	EventPredictionCreated = "prediction_created"
	EventInferenceFailed   = "inference_failed"
)

// Event represents a classification lifecycle event.
// Minimal and stable: name + stored filename and optional fields via key/values.
type Event struct {
	Name     string
	Filename string
	Fields   map[string]any
}

// EventPublisher receives events from the Service. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
