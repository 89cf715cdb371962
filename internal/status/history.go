package status

import (
	"time"

	"github.com/sweeney/forcepad/internal/logic"
)

// GestureRecord is one dispatched (or dropped) gesture.
type GestureRecord struct {
	Timestamp time.Time
	Side      logic.Side
	Kind      logic.GestureKind
	Command   logic.Command
	Sent      bool
}

// history is a fixed-capacity FIFO of recent gestures; when full the oldest
// record is overwritten. Not safe for concurrent use; the Tracker holds its lock.
type history struct {
	buf      []GestureRecord
	capacity int
	head     int // next write position
	count    int
}

func newHistory(capacity int) *history {
	if capacity < 1 {
		capacity = 1
	}
	return &history{
		buf:      make([]GestureRecord, capacity),
		capacity: capacity,
	}
}

func (h *history) push(rec GestureRecord) {
	h.buf[h.head] = rec
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
}

// list returns the records oldest first.
func (h *history) list() []GestureRecord {
	if h.count == 0 {
		return nil
	}

	result := make([]GestureRecord, h.count)
	// Oldest item is at (head - count) mod capacity
	start := (h.head - h.count + h.capacity) % h.capacity
	for i := 0; i < h.count; i++ {
		result[i] = h.buf[(start+i)%h.capacity]
	}
	return result
}

func (h *history) len() int {
	return h.count
}
