package interp

import (
	"testing"

	"github.com/ardnew/ckbd/internal/devtable"
	"github.com/ardnew/ckbd/internal/keymap"
	"github.com/ardnew/ckbd/internal/model"
)

func newTestContext() *Context {
	return &Context{
		Table:   devtable.NewTable(),
		Storage: model.NewStorageTable(),
		Slot:    0,
	}
}

func TestExec_DeviceSwitchesToStorageOnlyTarget(t *testing.T) {
	ctx := newTestContext()
	serial := "11111111111111111111111111111111"[:model.SerialLen]

	Exec(ctx, "device "+serial+" name myprofile")

	s := ctx.Storage.Find(serial)
	if s == nil {
		t.Fatalf("storage entry for %q not created", serial)
	}
	if got := s.Profile.CurrentMode().NameString(); got != "myprofile" {
		t.Errorf("mode name = %q, want %q", got, "myprofile")
	}
}

func TestExec_RGBBroadcastHex(t *testing.T) {
	ctx := newTestContext()
	serial := "22222222222222222222222222222222"[:model.SerialLen]
	Exec(ctx, "device "+serial+" rgb ff8000")

	mode := ctx.Storage.Find(serial).Profile.CurrentMode()
	r, g, b := mode.Light.RGB(0)
	// 0x80 keeps only its high nibble 8, which RGB reads back as 0x88.
	if r != 0xff || g != 0x88 || b != 0x00 {
		t.Errorf("RGB(0) = %02x%02x%02x, want ff8800", r, g, b)
	}
}

func TestExec_RGBPerKey(t *testing.T) {
	ctx := newTestContext()
	serial := "33333333333333333333333333333333"[:model.SerialLen]
	Exec(ctx, "device "+serial+" rgb a:ff0000")

	mode := ctx.Storage.Find(serial).Profile.CurrentMode()
	key, _ := keymap.Index("a")
	r, g, b := mode.Light.RGB(key)
	if r != 0xff || g != 0 || b != 0 {
		t.Errorf("RGB(a) = %02x%02x%02x, want ff0000", r, g, b)
	}
	if rb, _, _ := mode.Light.RGB(key + 1); rb != 0 {
		t.Errorf("adjacent key disturbed: r = %02x", rb)
	}
}

func TestExec_BindAndUnbind(t *testing.T) {
	ctx := newTestContext()
	serial := "44444444444444444444444444444444"[:model.SerialLen]
	Exec(ctx, "device "+serial+" bind a:b")

	mode := ctx.Storage.Find(serial).Profile.CurrentMode()
	keyA, _ := keymap.Index("a")
	keyB, _ := keymap.Index("b")
	if int(mode.Bind.Base[keyA]) != keyB {
		t.Fatalf("Base[a] = %d, want %d", mode.Bind.Base[keyA], keyB)
	}

	Exec(ctx, "device "+serial+" unbind a")
	if mode.Bind.Base[keyA] != 0 {
		t.Errorf("Base[a] after unbind = %d, want 0", mode.Bind.Base[keyA])
	}
}

func TestExec_EraseProfileResetsToSingleMode(t *testing.T) {
	ctx := newTestContext()
	serial := "55555555555555555555555555555555"[:model.SerialLen]
	Exec(ctx, "device "+serial+" mode 3 name three")
	Exec(ctx, "device "+serial+" eraseprofile")

	profile := ctx.Storage.Find(serial).Profile
	if len(profile.Modes) != 1 {
		t.Errorf("len(Modes) after eraseprofile = %d, want 1", len(profile.Modes))
	}
	if profile.Current != 0 {
		t.Errorf("Current after eraseprofile = %d, want 0", profile.Current)
	}
}

func TestExec_SwitchCommitsModeSelection(t *testing.T) {
	ctx := newTestContext()
	serial := "88888888888888888888888888888888"[:model.SerialLen]
	Exec(ctx, "device "+serial+" mode 2 name foo switch")

	profile := ctx.Storage.Find(serial).Profile
	if profile.Current != 1 {
		t.Errorf("Current after switch = %d, want 1", profile.Current)
	}
	if got := profile.CurrentMode().NameString(); got != "foo" {
		t.Errorf("CurrentMode name = %q, want %q", got, "foo")
	}
}

func TestExec_MacroClear(t *testing.T) {
	ctx := newTestContext()
	serial := "66666666666666666666666666666666"[:model.SerialLen]
	Exec(ctx, "device "+serial+" macro a:b+c")

	mode := ctx.Storage.Find(serial).Profile.CurrentMode()
	if len(mode.Bind.Macros) != 1 {
		t.Fatalf("len(Macros) = %d, want 1", len(mode.Bind.Macros))
	}

	Exec(ctx, "device "+serial+" macro clear")
	if len(mode.Bind.Macros) != 0 {
		t.Errorf("len(Macros) after clear = %d, want 0", len(mode.Bind.Macros))
	}
}

func TestExec_MacroComboTrigger(t *testing.T) {
	ctx := newTestContext()
	serial := "77777777777777777777777777777777"[:model.SerialLen]
	Exec(ctx, "device "+serial+" macro clear")
	Exec(ctx, "device "+serial+" macro g1+g2:abc")

	mode := ctx.Storage.Find(serial).Profile.CurrentMode()
	if len(mode.Bind.Macros) != 1 {
		t.Fatalf("len(Macros) = %d, want 1", len(mode.Bind.Macros))
	}
	m := mode.Bind.Macros[0]
	g1, _ := keymap.Index("g1")
	g2, _ := keymap.Index("g2")
	if !m.Combo.Test(g1) || !m.Combo.Test(g2) {
		t.Errorf("combo does not cover g1 and g2: keys = %v", m.ComboKeys())
	}
	if len(m.ComboKeys()) != 2 {
		t.Errorf("ComboKeys() = %v, want exactly [g1, g2]", m.ComboKeys())
	}
}

func TestSplitColon(t *testing.T) {
	tests := []struct {
		word      string
		wantLeft  string
		wantRight string
		wantOK    bool
	}{
		{"all:ff0000", "all", "ff0000", true},
		{"noColon", "noColon", "", true},
		{":rightonly", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			left, right, ok := splitColon(tt.word)
			if left != tt.wantLeft || right != tt.wantRight || ok != tt.wantOK {
				t.Errorf("splitColon(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.word, left, right, ok, tt.wantLeft, tt.wantRight, tt.wantOK)
			}
		})
	}
}
