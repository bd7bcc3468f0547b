package model

import (
	"github.com/ardnew/ckbd/internal/keymap"
	"github.com/ardnew/ckbd/pkg/ckberr"
)

// NameLen is the maximum number of UTF-16 code units in a mode or
// profile name (spec §3).
const NameLen = 16

// lightBytes is the width of one RGB channel array: 4 bits per key,
// packed two keys per byte.
const lightBytes = keymap.NKeys / 2

// USBID identifies a profile or mode for on-device storage and dirty
// tracking: a stable GUID plus a monotonically increasing modification
// counter (spec §3 invariants).
type USBID struct {
	GUID     [16]byte
	Modified uint16
}

// Bump increments the modification counter. External tools use this to
// detect dirty state; it must increase on every name or binding change.
func (id *USBID) Bump() {
	id.Modified++
}

// KeyLight is a mode's lighting block: three parallel 4-bit-per-channel
// palettes (one nibble per key) plus the mode-wide enabled flag.
type KeyLight struct {
	R, G, B [lightBytes]byte
	Enabled bool
}

// setNibble packs a single channel for key into its packed byte array.
func setNibble(arr *[lightBytes]byte, key int, value byte) {
	if key < 0 || key >= keymap.NKeys {
		return
	}
	idx, hi := key/2, key%2 == 0
	if hi {
		arr[idx] = (arr[idx] & 0x0F) | (value << 4)
	} else {
		arr[idx] = (arr[idx] & 0xF0) | (value & 0x0F)
	}
}

func getNibble(arr *[lightBytes]byte, key int) byte {
	if key < 0 || key >= keymap.NKeys {
		return 0
	}
	idx, hi := key/2, key%2 == 0
	if hi {
		return arr[idx] >> 4
	}
	return arr[idx] & 0x0F
}

// SetRGB applies an 8-bit-per-channel color to key, packing each channel
// down to the mode's 4-bit storage (spec §4.3 RGB RHS format).
func (l *KeyLight) SetRGB(key int, r, g, b uint8) {
	setNibble(&l.R, key, r>>4)
	setNibble(&l.G, key, g>>4)
	setNibble(&l.B, key, b>>4)
}

// RGB returns the packed 4-bit channel values for key, each replicated
// into the low nibble's corresponding 8-bit range for display/upload.
func (l *KeyLight) RGB(key int) (r, g, b uint8) {
	rn, gn, bn := getNibble(&l.R, key), getNibble(&l.G, key), getNibble(&l.B, key)
	return rn<<4 | rn, gn<<4 | gn, bn<<4 | bn
}

// KeyBind is a mode's key-binding block: per-key scancode overrides plus
// its macro list.
type KeyBind struct {
	Base   [keymap.NKeys]uint16 // 0 = no override
	Macros []Macro
}

// Mode is a named snapshot of lighting + key bindings + macros.
type Mode struct {
	Light KeyLight
	Bind  KeyBind
	Name  [NameLen]uint16
	ID    USBID
}

// NewMode returns a mode at its default settings: lighting off, no
// bindings, no macros, empty name.
func NewMode() *Mode {
	return &Mode{}
}

// Reset restores a mode to its default settings in place (spec §4.3
// `erase`), without touching its USBID — callers that need a dirty
// notification bump the ID themselves.
func (m *Mode) Reset() {
	m.Light = KeyLight{}
	m.Bind = KeyBind{}
	m.Name = [NameLen]uint16{}
}

// SetName sets the mode's name, truncated to NameLen UTF-16 code units,
// and bumps its modification counter.
func (m *Mode) SetName(name string) {
	m.Name = [NameLen]uint16{}
	copy(m.Name[:], stringToUTF16(name, NameLen))
	m.ID.Bump()
}

// NameString decodes the mode's name back to a Go string.
func (m *Mode) NameString() string {
	return utf16ToString(m.Name[:])
}

// AddMacro appends a macro to the mode's macro list, doubling capacity
// as needed and returning ckberr.ErrMacroCapacity once MacroMax is hit.
func (m *Mode) AddMacro(macro Macro) error {
	if len(m.Bind.Macros) >= MacroMax {
		return ckberr.ErrMacroCapacity
	}
	m.Bind.Macros = append(m.Bind.Macros, macro)
	return nil
}

// ClearMacros purges all macros from the mode (`macro clear`).
func (m *Mode) ClearMacros() {
	m.Bind.Macros = nil
}
