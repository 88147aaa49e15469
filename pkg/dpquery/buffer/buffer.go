// Package buffer implements the message buffer (C4, §4.3): a bounded
// FIFO of response messages sitting between the per-sub-request producer
// streams and the single correlator consumer.
package buffer

import (
	"sync"

	"github.com/osprey-dcs/dp-query-go/pkg/dpquery/dperrors"
)

// State is one of the buffer's four lifecycle states (§4.3).
type State int

const (
	Inactive State = iota
	Active
	Draining
	Terminated
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Draining:
		return "draining"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// MessageBuffer is a bounded FIFO queue of T. The zero value is not
// usable; construct with New. A MessageBuffer has exactly one consumer
// (the correlator's draining loop, §4.3 "the consumer is a single
// worker") and any number of producers (one per sub-request stream).
type MessageBuffer[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []T
	capacity int
	state    State
}

// New builds an inactive buffer with the given capacity (from config,
// §4.3 "queue size limit comes from config").
func New[T any](capacity int) *MessageBuffer[T] {
	b := &MessageBuffer[T]{capacity: capacity, state: Inactive}
	b.notEmpty = sync.NewCond(&b.mu)
	b.notFull = sync.NewCond(&b.mu)
	return b
}

// Activate transitions inactive → active (§4.3 "idempotent; active is
// the only state accepting producer offers"). Calling it on an already
// active buffer is a no-op; calling it after draining/terminated is a
// programming error caught by the returned error rather than a panic,
// since shutdown races are expected (§7 BufferClosed).
func (b *MessageBuffer[T]) Activate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Inactive:
		b.state = Active
		return nil
	case Active:
		return nil
	default:
		return dperrors.Newf(dperrors.KindBufferClosed, "cannot activate buffer in state %s", b.state)
	}
}

// Offer enqueues an item. It blocks while the buffer is full and active
// (§4.3 "Backpressure: producers block ... when full"). It fails with
// BufferClosed if the buffer is not active when the offer is attempted
// or becomes non-active while blocked.
func (b *MessageBuffer[T]) Offer(item T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.state == Active && len(b.items) >= b.capacity {
		b.notFull.Wait()
	}
	if b.state != Active {
		return dperrors.New(dperrors.KindBufferClosed, "offer to non-active buffer")
	}
	b.items = append(b.items, item)
	b.notEmpty.Signal()
	return nil
}

// Poll removes and returns the head item. ok is false iff the buffer is
// terminated and empty (§4.3 "Consumers see an end-of-stream signal iff
// the buffer is terminated AND empty"); Poll otherwise blocks while
// empty and non-terminated (draining or active).
func (b *MessageBuffer[T]) Poll() (item T, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.items) == 0 && b.state != Terminated {
		b.notEmpty.Wait()
	}
	if len(b.items) == 0 {
		var zero T
		return zero, false
	}
	item = b.items[0]
	b.items = b.items[1:]
	b.notFull.Signal()
	if b.state == Draining && len(b.items) == 0 {
		b.state = Terminated
		b.notEmpty.Broadcast()
	}
	return item, true
}

// Shutdown transitions active → draining (§4.3): no new offers are
// accepted, but the consumer drains the remaining items; the buffer
// auto-transitions to terminated once drained. Calling Shutdown on an
// already-draining or terminated buffer is a no-op.
func (b *MessageBuffer[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Active {
		return
	}
	if len(b.items) == 0 {
		b.state = Terminated
	} else {
		b.state = Draining
	}
	b.notFull.Broadcast()
	b.notEmpty.Broadcast()
}

// ShutdownNow transitions any state to terminated immediately, discarding
// pending items (§4.3 "* → terminated via shutdownNow(): discards
// pending items"). Used on cancellation (§5).
func (b *MessageBuffer[T]) ShutdownNow() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	b.state = Terminated
	b.notFull.Broadcast()
	b.notEmpty.Broadcast()
}

// State reports the buffer's current lifecycle state.
func (b *MessageBuffer[T]) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Len reports the number of items currently queued.
func (b *MessageBuffer[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
