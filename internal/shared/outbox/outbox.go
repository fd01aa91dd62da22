package outbox

// Message is the outbox row persisted inside the same DB transaction as the
// state change that produced it. The worker relay reads pending rows in
// creation order and publishes them to the message bus.
type Message struct {
	ID         string
	EventType  string
	Payload    []byte
	Status     string // pending, published, failed
	RetryCount int
}
