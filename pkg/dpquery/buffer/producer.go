package buffer

// Producer is the narrow offer-only view of a MessageBuffer the recovery
// channel drives (§4.2 "hands every received message to the shared
// buffer via a producer handle").
type Producer[T any] struct {
	buf *MessageBuffer[T]
}

// NewProducer wraps buf as a Producer.
func NewProducer[T any](buf *MessageBuffer[T]) Producer[T] {
	return Producer[T]{buf: buf}
}

// Offer forwards to the underlying buffer.
func (p Producer[T]) Offer(item T) error {
	return p.buf.Offer(item)
}
