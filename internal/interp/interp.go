// Package interp implements the command-line interpreter that turns
// lines read from a device node's cmd FIFO into mutations of the active
// device's profile (spec §4.3). It is a direct port of the upstream
// daemon's readcmd(): a small state machine where a verb word sets the
// "active command" (and, for per-key commands, a handler) applied to
// every following colon-parameter word on the same line, until the next
// verb word changes it.
package interp

import (
	"strconv"
	"strings"

	"github.com/ardnew/ckbd/internal/devtable"
	"github.com/ardnew/ckbd/internal/keymap"
	"github.com/ardnew/ckbd/internal/model"
)

// verb identifies the active command set by the most recently seen verb
// word on the line.
type verb int

// maxKeyNameLen bounds a key-selector name the way the upstream scanner's
// fixed char keyname[11] buffer does: anything longer can never match a
// table entry, so it is rejected before the lookup rather than relying on
// keymap.Index to simply fail.
const maxKeyNameLen = 10

const (
	verbNone verb = iota
	verbDevice
	verbMode
	verbName
	verbProfileName
	verbBind
	verbUnbind
	verbRebind
	verbMacro
	verbRGB
)

// keyHandler applies a colon-parameter's right-hand side to one key
// index of the active mode.
type keyHandler func(mode *model.Mode, key int, param string)

// Result reports the side effects a line produced, so the caller (the
// frame loop) knows whether to re-upload lighting state.
type Result struct {
	// RGBChanged is set when the line contained a lighting verb (switch,
	// erase, eraseprofile, rgb) whose state must be re-pushed to the
	// device (spec §4.3 rgbchange flag). Binding verbs do not set it.
	RGBChanged bool
}

// Context is everything the interpreter needs from the daemon: the
// currently targeted device slot (switched by a "device <serial>" word)
// and the storage table backing
// serial-addressed commands to devices that are not plugged in.
type Context struct {
	Table   *devtable.Table
	Storage *model.StorageTable
	// Slot is the index of the device this line currently targets.
	// 0 means "no live slot" (storage-only addressing).
	Slot int
}

// Exec interprets one command line against ctx, mutating ctx.Slot as a
// "device" word switches targets, and returns the accumulated result.
func Exec(ctx *Context, line string) Result {
	var res Result
	var command verb
	var handler keyHandler

	slot := ctx.Table.Get(ctx.Slot)
	var storage *model.Storage
	if slot != nil && slot.Occupied {
		storage = slot.Storage
	}
	var profile *model.Profile
	if storage != nil {
		profile = storage.Profile
	}
	var mode *model.Mode
	var modeIdx int
	if profile != nil {
		mode = profile.CurrentMode()
		modeIdx = profile.Current
	}

	words := strings.Fields(line)
	for _, word := range words {
		switch word {
		case "device":
			command, handler = verbDevice, nil
			continue
		case "mode":
			command, handler = verbMode, nil
			continue
		case "switch":
			command, handler = verbNone, nil
			if profile != nil {
				profile.Select(modeIdx)
			}
			res.RGBChanged = true
			continue
		case "erase":
			command, handler = verbNone, nil
			if mode != nil {
				mode.Reset()
			}
			res.RGBChanged = true
			continue
		case "eraseprofile":
			command, handler = verbNone, nil
			if profile != nil {
				profile.Erase()
				mode = profile.CurrentMode()
			}
			res.RGBChanged = true
			continue
		case "name":
			command, handler = verbName, nil
			if mode != nil {
				mode.ID.Bump()
			}
			continue
		case "profilename":
			command, handler = verbProfileName, nil
			if profile != nil {
				profile.ID.Bump()
			}
			continue
		case "bind":
			command, handler = verbBind, bindKey
			continue
		case "unbind":
			command, handler = verbUnbind, unbindKey
			continue
		case "rebind":
			command, handler = verbRebind, bindKey
			continue
		case "macro":
			command, handler = verbMacro, nil
			continue
		case "rgb":
			command, handler = verbRGB, rgbKey
			res.RGBChanged = true
			if mode != nil {
				mode.ID.Bump()
			}
			continue
		}

		if command == verbNone {
			continue
		}

		if command == verbDevice {
			if len(word) == model.SerialLen {
				if i := ctx.Table.FindBySerial(word); i != 0 {
					ctx.Slot = i
					slot = ctx.Table.Get(i)
					storage = slot.Storage
				} else {
					ctx.Slot = 0
					slot = nil
					storage = ctx.Storage.GetOrCreate(word)
				}
				profile = storage.Profile
				mode = profile.CurrentMode()
				modeIdx = profile.Current
			}
			continue
		}

		if mode == nil {
			continue
		}

		switch command {
		case verbMode:
			if n, err := strconv.Atoi(word); err == nil && n > 0 && n <= model.ModeMax {
				if m, err := profile.Mode(n - 1); err == nil {
					mode = m
					modeIdx = n - 1
				}
			}
			continue
		case verbName:
			mode.SetName(word)
			continue
		case verbProfileName:
			profile.SetName(word)
			continue
		case verbRGB:
			switch word {
			case "on":
				mode.Light.Enabled = true
				continue
			case "off":
				mode.Light.Enabled = false
				continue
			default:
				if r, g, b, ok := parseHexRGB(word); ok {
					for i := 0; i < keymap.NKeys; i++ {
						mode.Light.SetRGB(i, r, g, b)
					}
					continue
				}
			}
		case verbMacro:
			if word == "clear" {
				mode.ClearMacros()
				continue
			}
		}

		left, right, ok := splitColon(word)
		if !ok {
			continue
		}

		if command == verbMacro {
			addMacro(mode, left, right)
			continue
		}

		applyKeySelectors(mode, left, right, handler)
	}

	return res
}

// splitColon splits word at its first ':' into (left, right). ok is
// false if word has no left-hand side at all.
func splitColon(word string) (left, right string, ok bool) {
	i := strings.IndexByte(word, ':')
	if i < 0 {
		return word, "", word != ""
	}
	if i == 0 {
		return "", "", false
	}
	return word[:i], word[i+1:], true
}

// applyKeySelectors resolves the comma-separated key selectors in left
// (a key name, "all", "#<dec>", or "#x<hex>") and calls handler for each
// resolved key index with right as its parameter.
func applyKeySelectors(mode *model.Mode, left, right string, handler keyHandler) {
	if handler == nil {
		return
	}
	for _, sel := range strings.Split(left, ",") {
		switch {
		case sel == "all":
			for i := 0; i < keymap.NKeys; i++ {
				handler(mode, i, right)
			}
		case strings.HasPrefix(sel, "#x"):
			if n, err := strconv.ParseInt(sel[2:], 16, 32); err == nil && n >= 0 && int(n) < keymap.NKeys {
				handler(mode, int(n), right)
			}
		case strings.HasPrefix(sel, "#"):
			if n, err := strconv.Atoi(sel[1:]); err == nil && n >= 0 && n < keymap.NKeys {
				handler(mode, n, right)
			}
		default:
			if len(sel) > maxKeyNameLen {
				continue
			}
			if i, found := keymap.Index(sel); found {
				handler(mode, i, right)
			}
		}
	}
}

func bindKey(mode *model.Mode, key int, param string) {
	if key < 0 || key >= keymap.NKeys {
		return
	}
	target, found := keymap.Index(param)
	if !found {
		return
	}
	mode.Bind.Base[key] = uint16(target)
}

func unbindKey(mode *model.Mode, key int, _ string) {
	if key < 0 || key >= keymap.NKeys {
		return
	}
	mode.Bind.Base[key] = 0
}

func rgbKey(mode *model.Mode, key int, param string) {
	r, g, b, ok := parseHexRGB(param)
	if !ok {
		return
	}
	mode.Light.SetRGB(key, r, g, b)
}

// parseHexRGB parses a 6-digit hex color ("rrggbb").
func parseHexRGB(s string) (r, g, b uint8, ok bool) {
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(n >> 16), uint8(n >> 8), uint8(n), true
}

// addMacro parses a macro definition line's two sides: left is a
// "+"-separated key combination that must all be held to trigger the
// macro, right is a "+"-separated action sequence of "<key>" (press) or
// "-<key>" (release) tokens. Action tokens that name no key are skipped;
// the macro is still added as long as the combination resolves.
func addMacro(mode *model.Mode, left, right string) {
	var keys []int
	for _, sel := range strings.Split(left, "+") {
		if len(sel) > maxKeyNameLen {
			continue
		}
		if i, found := keymap.Index(sel); found {
			keys = append(keys, i)
		}
	}
	if len(keys) == 0 {
		return
	}
	var actions []model.MacroAction
	for _, tok := range strings.Split(right, "+") {
		down := true
		name := tok
		if strings.HasPrefix(tok, "-") {
			down, name = false, tok[1:]
		}
		if i, found := keymap.Index(name); found {
			actions = append(actions, model.MacroAction{Scancode: uint16(i), Down: down})
		}
	}
	m := model.Macro{Actions: actions}
	m.SetCombo(keys)
	_ = mode.AddMacro(m)
}
