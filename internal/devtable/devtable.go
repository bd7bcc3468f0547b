// Package devtable implements the fixed-capacity device table described
// in spec §3: slot 0 is the root pseudo-device, slots 1..N-1 hold live
// devices, each carrying its USB handle, pending input state, indicator
// byte, command-node handle, write queue, and a reference to its
// persistent storage entry.
package devtable

import (
	"github.com/ardnew/ckbd/internal/inputsynth"
	"github.com/ardnew/ckbd/internal/keymap"
	"github.com/ardnew/ckbd/internal/model"
	"github.com/ardnew/ckbd/internal/node"
	"github.com/ardnew/ckbd/internal/queue"
	"github.com/ardnew/ckbd/internal/usbhal"
	"github.com/ardnew/ckbd/pkg/ckberr"
)

// SlotMax is the largest number of slots the table holds, including the
// reserved root slot (spec §3: a fixed roster, not a dynamic list, so
// hotplug churn never reallocates live slot indices).
const SlotMax = 8

// bitsetWords is the number of words in the pressed-key bitset, one bit
// per key index.
const bitsetWords = (keymap.NKeys + 63) / 64

// keyset is a fixed bitset over key indices, used to detect edge
// transitions between consecutive interrupt-in reports.
type keyset [bitsetWords]uint64

func (k *keyset) test(i int) bool {
	if i < 0 || i >= keymap.NKeys {
		return false
	}
	return k[i/64]&(1<<uint(i%64)) != 0
}

func (k *keyset) set(i int, v bool) {
	if i < 0 || i >= keymap.NKeys {
		return
	}
	if v {
		k[i/64] |= 1 << uint(i%64)
	} else {
		k[i/64] &^= 1 << uint(i%64)
	}
}

// Slot is one entry of the device table. The root slot (index 0) is
// Occupied with only Node set; real device slots carry the rest.
type Slot struct {
	Occupied bool

	Descriptor usbhal.Descriptor
	Device     usbhal.DeviceID
	Name       string

	Node  *node.Handle
	Input inputsynth.Sink
	Queue *queue.Queue

	Storage *model.Storage

	// Pending is the most recently read, not-yet-decoded interrupt-in
	// report.
	Pending [64]byte
	// PrevKeys and CurKeys hold the previous and current report's
	// pressed-key bitsets; their difference produces down/up edges.
	PrevKeys, CurKeys keyset

	// Indicators is the num/caps/scroll-lock byte last requested by the
	// OS side, staged for upload to the device.
	Indicators byte
}

// KeyEdge is one key's down/up transition between two interrupt-in
// reports.
type KeyEdge struct {
	Key  int
	Down bool
}

// KeyEdges returns the key indices that transitioned since the last
// decoded report, each paired with whether it is now down.
func (s *Slot) KeyEdges() []KeyEdge {
	var edges []KeyEdge
	for i := 0; i < keymap.NKeys; i++ {
		was, is := s.PrevKeys.test(i), s.CurKeys.test(i)
		if was != is {
			edges = append(edges, KeyEdge{Key: i, Down: is})
		}
	}
	return edges
}

// DecodeReport rebuilds CurKeys from a raw interrupt-in report, treating
// every non-zero byte of the report (the first one included) as the index
// of a pressed key, and rotates the previous bitset forward.
func (s *Slot) DecodeReport(report []byte) {
	s.PrevKeys = s.CurKeys
	s.CurKeys = keyset{}
	for _, b := range report {
		if b == 0 {
			continue
		}
		s.CurKeys.set(int(b), true)
	}
}

// Table is the fixed-capacity device table, slot 0 reserved as the root
// pseudo-device.
type Table struct {
	slots [SlotMax]Slot
}

// NewTable returns a table with slot 0 initialized as the occupied-but-
// deviceless root.
func NewTable() *Table {
	t := &Table{}
	t.slots[0] = Slot{Occupied: true}
	return t
}

// Get returns the slot at index i, or nil if out of range.
func (t *Table) Get(i int) *Slot {
	if i < 0 || i >= SlotMax {
		return nil
	}
	return &t.slots[i]
}

// Len returns the fixed slot count, SlotMax.
func (t *Table) Len() int {
	return SlotMax
}

// FreeSlot returns the index of the first unoccupied non-root slot, or
// ckberr.ErrNoFreeSlot if the table is full. Callers that need to create
// external resources (a device node directory, an input sink) keyed by
// slot index call this before Attach so the resource and the slot agree.
func (t *Table) FreeSlot() (int, error) {
	for i := 1; i < SlotMax; i++ {
		if !t.slots[i].Occupied {
			return i, nil
		}
	}
	return 0, ckberr.ErrNoFreeSlot
}

// Attach places a newly arrived device into slot i, which must have been
// obtained from FreeSlot and still be free.
func (t *Table) Attach(i int, desc usbhal.Descriptor, dev usbhal.DeviceID, name string, storage *model.Storage, input inputsynth.Sink, nodeHandle *node.Handle) error {
	if i <= 0 || i >= SlotMax {
		return ckberr.ErrUnknownSlot
	}
	if t.slots[i].Occupied {
		return ckberr.ErrSlotOccupied
	}
	t.slots[i] = Slot{
		Occupied:   true,
		Descriptor: desc,
		Device:     dev,
		Name:       name,
		Node:       nodeHandle,
		Input:      input,
		Queue:      queue.New(model.QueueCapacity),
		Storage:    storage,
	}
	return nil
}

// Detach clears slot i, releasing it for reuse. It does not close the
// slot's node or input handles; callers close those first (spec §6
// shutdown ordering applies to detach as well as full shutdown).
func (t *Table) Detach(i int) error {
	if i <= 0 || i >= SlotMax {
		return ckberr.ErrUnknownSlot
	}
	if !t.slots[i].Occupied {
		return ckberr.ErrUnknownSlot
	}
	t.slots[i] = Slot{}
	return nil
}

// FindBySerial returns the index of the occupied slot whose storage
// entry matches serial, or 0 (the root slot never matches a serial) if
// none is attached.
func (t *Table) FindBySerial(serial string) int {
	for i := 1; i < SlotMax; i++ {
		if t.slots[i].Occupied && t.slots[i].Storage != nil && t.slots[i].Storage.Serial == serial {
			return i
		}
	}
	return 0
}

// ConnectedEntry is one live device slot's contribution to the root
// pseudo-device's connected listing (spec §4.1/§6: `<root><i> <serial>
// <name>` per line).
type ConnectedEntry struct {
	Index  int
	Serial string
	Name   string
}

// ConnectedEntries returns one entry per currently attached device, in
// slot order, for the root pseudo-device's connected listing.
func (t *Table) ConnectedEntries() []ConnectedEntry {
	var entries []ConnectedEntry
	for i := 1; i < SlotMax; i++ {
		if t.slots[i].Occupied && t.slots[i].Storage != nil {
			entries = append(entries, ConnectedEntry{
				Index:  i,
				Serial: t.slots[i].Storage.Serial,
				Name:   t.slots[i].Name,
			})
		}
	}
	return entries
}
