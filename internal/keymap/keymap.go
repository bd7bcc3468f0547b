// Package keymap provides the platform key-name table used to resolve
// the command interpreter's key selectors (spec §4.3) to key indices.
//
// The real daemon's keymap is platform-specific (it must agree with the
// OS input-synthesis layer on which index means which physical key); the
// table below is the Linux layout, matching the scancode-name convention
// of a standard 104/105-key board plus the extra G-keys and the lighting
// logo/well zones a Corsair board exposes. It is intentionally a plain
// data table: resolution logic lives in internal/interp.
package keymap

// NKeys is the number of addressable keys/zones on the largest supported
// board. It must stay a multiple of 8 so the macro trigger bitmap and the
// lighting arrays (4 bits/channel, N_KEYS/2 bytes) divide evenly.
const NKeys = 144

// entry names a single key index. A zero Name means the index exists (it
// is still addressable via "#<n>") but has no canonical name.
type entry struct {
	Name string
}

// table maps key index -> name. Unlisted indices have no name.
var table [NKeys]entry

func set(i int, name string) {
	table[i] = entry{Name: name}
}

func init() {
	// Standard alphanumeric block.
	letters := "abcdefghijklmnopqrstuvwxyz"
	for i, r := range letters {
		set(4+i, string(r))
	}
	digits := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "0"}
	for i, d := range digits {
		set(30+i, d)
	}

	set(40, "enter")
	set(41, "esc")
	set(42, "bspace")
	set(43, "tab")
	set(44, "space")
	set(45, "minus")
	set(46, "equal")
	set(47, "lbrace")
	set(48, "rbrace")
	set(49, "bslash")
	set(51, "colon")
	set(52, "quote")
	set(53, "tilde")
	set(54, "comma")
	set(55, "dot")
	set(56, "slash")
	set(57, "caps")

	for i := 0; i < 12; i++ {
		set(58+i, "f"+itoa(i+1))
	}

	set(70, "print")
	set(71, "scroll")
	set(72, "pause")
	set(73, "ins")
	set(74, "home")
	set(75, "pgup")
	set(76, "del")
	set(77, "end")
	set(78, "pgdn")
	set(79, "right")
	set(80, "left")
	set(81, "down")
	set(82, "up")

	set(83, "numlock")
	set(84, "numslash")
	set(85, "numstar")
	set(86, "numminus")
	set(87, "numplus")
	set(88, "numenter")
	for i := 0; i < 9; i++ {
		set(89+i, "num"+string(rune('1'+i)))
	}
	set(98, "num0")
	set(99, "numdot")

	set(100, "lctrl")
	set(101, "lshift")
	set(102, "lalt")
	set(103, "lwin")
	set(104, "rctrl")
	set(105, "rshift")
	set(106, "ralt")
	set(107, "rwin")

	// Corsair-specific G-keys (K95-style boards number them g1..g18).
	for i := 0; i < 18; i++ {
		set(110+i, "g"+itoa(i+1))
	}
	set(128, "mr")
	set(129, "m1")
	set(130, "m2")
	set(131, "m3")
	set(132, "lightup")
	set(133, "lightdn")
	set(134, "lock")
	set(135, "mute")
	set(136, "stop")
	set(137, "prev")
	set(138, "play")
	set(139, "next")
	set(140, "volup")
	set(141, "voldn")
}

// itoa is a tiny decimal formatter so init() avoids importing strconv
// for single- and double-digit key-name suffixes.
func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

// Name returns the canonical name of key index i, or "" if it has none or
// i is out of range.
func Name(i int) string {
	if i < 0 || i >= NKeys {
		return ""
	}
	return table[i].Name
}

// Index returns the key index for name, and whether it was found. Lookup
// is case-sensitive; the interpreter passes selector words through
// unchanged, so only lowercase names match.
func Index(name string) (int, bool) {
	for i := range table {
		if table[i].Name == name {
			return i, true
		}
	}
	return 0, false
}
