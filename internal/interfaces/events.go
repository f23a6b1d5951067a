package interfaces

// Event types pushed to connected clients
const (
	EventProgress           = "progress"
	EventGenerationStarted  = "generation_started"
	EventGenerationFinished = "generation_finished"
	EventGenerationFailed   = "generation_failed"
)

// EventPublisher fans events out to subscribers. Publish must not block.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}
