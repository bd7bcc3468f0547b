package model

import "testing"

func TestKeyLight_SetRGBRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		wantR   uint8
		wantG   uint8
		wantB   uint8
	}{
		{"white", 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{"black", 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{"truncated nibble", 0x3f, 0x21, 0x08, 0x33, 0x22, 0x00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l KeyLight
			l.SetRGB(5, tt.r, tt.g, tt.b)
			r, g, b := l.RGB(5)
			if r != tt.wantR || g != tt.wantG || b != tt.wantB {
				t.Errorf("RGB(5) = %02x%02x%02x, want %02x%02x%02x", r, g, b, tt.wantR, tt.wantG, tt.wantB)
			}
		})
	}
}

func TestKeyLight_SetRGBDoesNotDisturbOtherKeys(t *testing.T) {
	var l KeyLight
	l.SetRGB(0, 0xff, 0xff, 0xff)
	l.SetRGB(1, 0x00, 0x00, 0x00)
	if r, g, b := l.RGB(0); r != 0xff || g != 0xff || b != 0xff {
		t.Errorf("key 0 disturbed: got %02x%02x%02x", r, g, b)
	}
}

func TestMode_SetNameTruncatesAndBumps(t *testing.T) {
	m := NewMode()
	before := m.ID.Modified
	m.SetName("a very long mode name that exceeds sixteen units")
	if got := m.NameString(); len([]rune(got)) > NameLen {
		t.Errorf("name not truncated: %q has %d units", got, len([]rune(got)))
	}
	if m.ID.Modified != before+1 {
		t.Errorf("Modified = %d, want %d", m.ID.Modified, before+1)
	}
}

func TestMode_Reset(t *testing.T) {
	m := NewMode()
	m.SetName("test")
	m.Light.SetRGB(0, 1, 2, 3)
	m.Bind.Base[0] = 5
	m.Reset()
	if m.NameString() != "" {
		t.Errorf("name not cleared: %q", m.NameString())
	}
	if m.Bind.Base[0] != 0 {
		t.Errorf("binding not cleared")
	}
	if r, g, b := m.Light.RGB(0); r != 0 || g != 0 || b != 0 {
		t.Errorf("lighting not cleared")
	}
}

func TestMode_AddMacroCapacity(t *testing.T) {
	m := NewMode()
	for i := 0; i < MacroMax; i++ {
		if err := m.AddMacro(Macro{}); err != nil {
			t.Fatalf("AddMacro(%d) = %v, want nil", i, err)
		}
	}
	if err := m.AddMacro(Macro{}); err == nil {
		t.Errorf("AddMacro at capacity = nil, want error")
	}
}

func TestMode_ClearMacros(t *testing.T) {
	m := NewMode()
	_ = m.AddMacro(Macro{})
	m.ClearMacros()
	if len(m.Bind.Macros) != 0 {
		t.Errorf("ClearMacros left %d macros", len(m.Bind.Macros))
	}
}
