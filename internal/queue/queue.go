// Package queue implements the bounded per-device write queue described in
// spec §3: outbound USB packets are buffered here between the frame loop
// and the usbhal backend so a momentarily busy or gone device never blocks
// command processing for the rest of the device table.
package queue

import (
	"github.com/ardnew/ckbd/internal/model"
	"github.com/ardnew/ckbd/pkg/ckberr"
)

// Queue is a fixed-capacity FIFO of model.Message. It is not safe for
// concurrent use; the frame loop owns each device's queue exclusively
// (spec §5 single-threaded model).
type Queue struct {
	buf  []model.Message
	cap  int
	head int
	size int
}

// New returns an empty queue with room for capacity messages.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = model.QueueCapacity
	}
	return &Queue{buf: make([]model.Message, capacity), cap: capacity}
}

// Push appends msg to the tail of the queue. It returns ckberr.ErrQueueFull
// once the queue has reached capacity; callers are expected to surface
// that as a command failure rather than block.
func (q *Queue) Push(msg model.Message) error {
	if q.size == q.cap {
		return ckberr.ErrQueueFull
	}
	tail := (q.head + q.size) % q.cap
	q.buf[tail] = msg
	q.size++
	return nil
}

// Pop removes and returns the oldest queued message. ok is false if the
// queue is empty.
func (q *Queue) Pop() (msg model.Message, ok bool) {
	if q.size == 0 {
		return model.Message{}, false
	}
	msg = q.buf[q.head]
	q.head = (q.head + 1) % q.cap
	q.size--
	return msg, true
}

// Len returns the number of messages currently queued.
func (q *Queue) Len() int {
	return q.size
}

// Full reports whether the queue has reached capacity.
func (q *Queue) Full() bool {
	return q.size == q.cap
}

// Drain removes and discards every queued message, returning how many were
// dropped. Used during the bounded shutdown drain (spec §6 quit sequence):
// the daemon gives each queue a brief grace period to flush via Pop, then
// calls Drain to abandon whatever remains.
func (q *Queue) Drain() int {
	n := q.size
	q.head, q.size = 0, 0
	return n
}
