package devtable

import (
	"errors"
	"testing"

	"github.com/ardnew/ckbd/internal/model"
	"github.com/ardnew/ckbd/internal/usbhal"
	"github.com/ardnew/ckbd/pkg/ckberr"
)

func TestNewTable_RootSlotOccupied(t *testing.T) {
	tbl := NewTable()
	root := tbl.Get(0)
	if !root.Occupied {
		t.Errorf("root slot not occupied")
	}
}

func TestTable_AttachAndDetach(t *testing.T) {
	tbl := NewTable()
	storage := model.NewStorage("serial-1")

	i, err := tbl.FreeSlot()
	if err != nil {
		t.Fatalf("FreeSlot() = %v", err)
	}
	if i != 1 {
		t.Fatalf("FreeSlot() = %d, want 1", i)
	}

	desc := usbhal.Descriptor{VendorID: 0x1b1c, ProductID: 0x1b11, Serial: "serial-1"}
	if err := tbl.Attach(i, desc, usbhal.DeviceID(1), "K95", storage, nil, nil); err != nil {
		t.Fatalf("Attach() = %v", err)
	}
	if !tbl.Get(i).Occupied {
		t.Errorf("slot %d not occupied after Attach", i)
	}

	if err := tbl.Detach(i); err != nil {
		t.Fatalf("Detach() = %v", err)
	}
	if tbl.Get(i).Occupied {
		t.Errorf("slot %d still occupied after Detach", i)
	}
}

func TestTable_AttachOccupiedFails(t *testing.T) {
	tbl := NewTable()
	storage := model.NewStorage("serial-1")
	if err := tbl.Attach(1, usbhal.Descriptor{}, 1, "", storage, nil, nil); err != nil {
		t.Fatalf("first Attach() = %v", err)
	}
	if err := tbl.Attach(1, usbhal.Descriptor{}, 2, "", storage, nil, nil); !errors.Is(err, ckberr.ErrSlotOccupied) {
		t.Errorf("second Attach() = %v, want ErrSlotOccupied", err)
	}
}

func TestTable_FindBySerial(t *testing.T) {
	tbl := NewTable()
	storage := model.NewStorage("target-serial")
	_ = tbl.Attach(1, usbhal.Descriptor{}, 1, "", storage, nil, nil)

	if got := tbl.FindBySerial("target-serial"); got != 1 {
		t.Errorf("FindBySerial() = %d, want 1", got)
	}
	if got := tbl.FindBySerial("missing"); got != 0 {
		t.Errorf("FindBySerial(missing) = %d, want 0", got)
	}
}

func TestTable_ConnectedEntries(t *testing.T) {
	tbl := NewTable()
	_ = tbl.Attach(1, usbhal.Descriptor{}, 1, "K95", model.NewStorage("a"), nil, nil)
	_ = tbl.Attach(2, usbhal.Descriptor{}, 2, "K70", model.NewStorage("b"), nil, nil)

	got := tbl.ConnectedEntries()
	want := []ConnectedEntry{
		{Index: 1, Serial: "a", Name: "K95"},
		{Index: 2, Serial: "b", Name: "K70"},
	}
	if len(got) != len(want) {
		t.Fatalf("ConnectedEntries() = %v, want %v", got, want)
	}
	for i, e := range want {
		if got[i] != e {
			t.Errorf("ConnectedEntries()[%d] = %+v, want %+v", i, got[i], e)
		}
	}
}

func TestSlot_DecodeReportAndKeyEdges(t *testing.T) {
	var s Slot
	s.DecodeReport([]byte{4}) // key index 4 down ("a")

	edges := s.KeyEdges()
	if len(edges) != 1 || edges[0].Key != 4 || !edges[0].Down {
		t.Fatalf("KeyEdges() = %v, want one down edge at key 4", edges)
	}

	s.DecodeReport([]byte{}) // release
	edges = s.KeyEdges()
	if len(edges) != 1 || edges[0].Key != 4 || edges[0].Down {
		t.Fatalf("KeyEdges() after release = %v, want one up edge at key 4", edges)
	}
}
