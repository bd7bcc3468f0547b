package queue

import (
	"errors"
	"testing"

	"github.com/ardnew/ckbd/internal/model"
	"github.com/ardnew/ckbd/pkg/ckberr"
)

func TestQueue_PushPopOrder(t *testing.T) {
	q := New(4)
	for i := 0; i < 3; i++ {
		if err := q.Push(model.NewMessage([]byte{byte(i)})); err != nil {
			t.Fatalf("Push(%d) = %v", i, err)
		}
	}
	for i := 0; i < 3; i++ {
		msg, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop() ok = false at i=%d", i)
		}
		if msg[0] != byte(i) {
			t.Errorf("Pop()[0] = %d, want %d", msg[0], i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Errorf("Pop() on empty queue ok = true")
	}
}

func TestQueue_FullReturnsErrQueueFull(t *testing.T) {
	q := New(2)
	_ = q.Push(model.Message{})
	_ = q.Push(model.Message{})
	if err := q.Push(model.Message{}); !errors.Is(err, ckberr.ErrQueueFull) {
		t.Errorf("Push on full queue = %v, want ErrQueueFull", err)
	}
}

func TestQueue_WrapsAroundRingBuffer(t *testing.T) {
	q := New(3)
	_ = q.Push(model.NewMessage([]byte{1}))
	_ = q.Push(model.NewMessage([]byte{2}))
	_, _ = q.Pop()
	_ = q.Push(model.NewMessage([]byte{3}))
	_ = q.Push(model.NewMessage([]byte{4}))

	var got []byte
	for {
		msg, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, msg[0])
	}
	want := []byte{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("drained %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drained[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New(4)
	_ = q.Push(model.Message{})
	_ = q.Push(model.Message{})
	if n := q.Drain(); n != 2 {
		t.Errorf("Drain() = %d, want 2", n)
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", q.Len())
	}
}
