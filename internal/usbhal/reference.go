package usbhal

import (
	"context"
	"sync"
)

// Reference is an in-memory Backend implementation for tests and for
// running the daemon without real hardware. It simulates a fixed roster
// of devices that "arrive" the first time Poll is called after Init, and
// loops back whatever ControlTransfer writes as the next InterruptIn
// report, which is enough to exercise the frame loop, queue draining, and
// interpreter without a kernel HID stack.
type Reference struct {
	mu      sync.Mutex
	roster  []Descriptor
	ids     map[DeviceID]Descriptor
	next    DeviceID
	pending map[DeviceID][]byte
	leds    map[DeviceID]byte
	arrived bool
	closed  bool
}

// NewReference returns a reference backend that will report roster as
// connected devices on its first Poll.
func NewReference(roster []Descriptor) *Reference {
	return &Reference{
		roster:  roster,
		ids:     make(map[DeviceID]Descriptor),
		pending: make(map[DeviceID][]byte),
		leds:    make(map[DeviceID]byte),
		next:    1,
	}
}

func (r *Reference) Init(ctx context.Context) error {
	return nil
}

func (r *Reference) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Reference) Poll() []HotplugEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.arrived || r.closed {
		return nil
	}
	r.arrived = true
	events := make([]HotplugEvent, 0, len(r.roster))
	for _, d := range r.roster {
		id := r.next
		r.next++
		r.ids[id] = d
		events = append(events, HotplugEvent{Device: id, Descriptor: d, Arrived: true})
	}
	return events
}

func (r *Reference) ControlTransfer(ctx context.Context, dev DeviceID, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[dev]; !ok {
		return ErrUnknownDevice
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	r.pending[dev] = cp
	return nil
}

func (r *Reference) InterruptIn(dev DeviceID, data []byte) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	buf, ok := r.pending[dev]
	if !ok || len(buf) == 0 {
		return 0, false
	}
	n := copy(data, buf)
	delete(r.pending, dev)
	return n, true
}

func (r *Reference) SetIndicators(dev DeviceID, leds byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[dev]; !ok {
		return ErrUnknownDevice
	}
	r.leds[dev] = leds
	return nil
}

// Indicators returns the last indicator byte uploaded for dev, for test
// assertions.
func (r *Reference) Indicators(dev DeviceID) byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leds[dev]
}
