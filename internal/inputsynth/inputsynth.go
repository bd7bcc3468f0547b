// Package inputsynth defines the OS input-synthesis collaborator: the
// component the real daemon hands decoded key events to so the host OS
// sees ordinary keyboard/mouse input even while the firmware is in
// vendor mode and no longer reporting as a HID boot-protocol device
// (spec §2, §3 Device slot "OS input-synthesis handle").
package inputsynth

// Event is a single decoded key transition ready for OS delivery.
type Event struct {
	Scancode int
	Down     bool
}

// Sink receives synthesized input events for one device. A real
// implementation writes to a uinput device; the reference sink in this
// package just records events for tests.
type Sink interface {
	// Emit delivers one key transition.
	Emit(ev Event) error

	// Close releases any OS resources backing the sink.
	Close() error
}
