package model

import "github.com/ardnew/ckbd/internal/keymap"

// MacroMax is the maximum number of macros a single mode may hold.
const MacroMax = 1024

// comboBytes is the width of the fixed bitset used for a macro's trigger
// combination, sized to keymap.NKeys rounded up to a byte per spec §9.
const comboBytes = (keymap.NKeys + 7) / 8

// MacroAction is one step of a macro's recorded action sequence: press or
// release of a single key.
type MacroAction struct {
	Scancode uint16
	Down     bool
}

// combo is a fixed-width bitset over key indices, used as a macro's
// trigger combination.
type combo [comboBytes]byte

func (c *combo) set(key int) {
	if key < 0 || key >= keymap.NKeys {
		return
	}
	c[key/8] |= 1 << uint(key%8)
}

func (c *combo) clear(key int) {
	if key < 0 || key >= keymap.NKeys {
		return
	}
	c[key/8] &^= 1 << uint(key%8)
}

// Test returns whether key is part of the combination.
func (c *combo) Test(key int) bool {
	if key < 0 || key >= keymap.NKeys {
		return false
	}
	return c[key/8]&(1<<uint(key%8)) != 0
}

// Keys returns the key indices set in the combination, in index order.
func (c *combo) Keys() []int {
	var keys []int
	for i := 0; i < keymap.NKeys; i++ {
		if c.Test(i) {
			keys = append(keys, i)
		}
	}
	return keys
}

// Macro is an ordered action sequence triggered by a key combination.
type Macro struct {
	Actions   []MacroAction
	Combo     combo
	Triggered bool // transient: already fired while the combo is held
}

// SetCombo rebuilds the macro's trigger bitmap from a set of key indices.
func (m *Macro) SetCombo(keys []int) {
	m.Combo = combo{}
	for _, k := range keys {
		m.Combo.set(k)
	}
}

// ComboKeys returns the key indices in the macro's trigger combination.
func (m *Macro) ComboKeys() []int {
	return m.Combo.Keys()
}
