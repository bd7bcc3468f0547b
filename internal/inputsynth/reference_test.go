package inputsynth

import "testing"

func TestReference_EmitRecordsInOrder(t *testing.T) {
	r := NewReference()
	_ = r.Emit(Event{Scancode: 4, Down: true})
	_ = r.Emit(Event{Scancode: 4, Down: false})

	if len(r.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(r.Events))
	}
	if !r.Events[0].Down || r.Events[1].Down {
		t.Errorf("Events = %v, want down then up", r.Events)
	}
}

func TestReference_Close(t *testing.T) {
	r := NewReference()
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
