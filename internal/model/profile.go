package model

import "github.com/ardnew/ckbd/pkg/ckberr"

// ModeMax is the maximum number of modes a profile may hold (spec §3).
const ModeMax = 16

// Profile is an ordered, dynamic list of modes plus the index of the
// currently selected one.
//
// Current is an index into Modes rather than a pointer, per the design
// note in spec §9: an owning slice plus a separate index avoids an
// internal self-reference that strict-aliasing languages can't model
// cleanly, and it is what this Go port mirrors.
type Profile struct {
	Modes   []Mode
	Current int
	Name    [NameLen]uint16
	ID      USBID
}

// NewProfile returns a profile with a single default mode selected,
// matching the state produced by `eraseprofile` (spec §4.3).
func NewProfile() *Profile {
	p := &Profile{}
	p.Modes = append(p.Modes, *NewMode())
	p.Current = 0
	return p
}

// CurrentMode returns the profile's currently selected mode. It is never
// nil once the profile has been constructed via NewProfile (spec §3
// invariant: currentmode is always valid).
func (p *Profile) CurrentMode() *Mode {
	if p.Current < 0 || p.Current >= len(p.Modes) {
		return nil
	}
	return &p.Modes[p.Current]
}

// Mode returns mode index n (0-based), creating it (and any modes before
// it) if absent, up to ModeMax. Returns ckberr.ErrInvalidMode if n is out
// of range.
func (p *Profile) Mode(n int) (*Mode, error) {
	if n < 0 || n >= ModeMax {
		return nil, ckberr.ErrInvalidMode
	}
	if n >= len(p.Modes) {
		if n >= ModeMax {
			return nil, ckberr.ErrModeCapacity
		}
		for len(p.Modes) <= n {
			p.Modes = append(p.Modes, *NewMode())
		}
	}
	return &p.Modes[n], nil
}

// Select commits mode n as the profile's current mode (spec §4.3
// `switch`/`mode` selection). It does not create the mode; call Mode
// first.
func (p *Profile) Select(n int) {
	if n >= 0 && n < len(p.Modes) {
		p.Current = n
	}
}

// SetName sets the profile's name, truncated to NameLen UTF-16 code
// units, and bumps its modification counter.
func (p *Profile) SetName(name string) {
	p.Name = [NameLen]uint16{}
	copy(p.Name[:], stringToUTF16(name, NameLen))
	p.ID.Bump()
}

// NameString decodes the profile's name back to a Go string.
func (p *Profile) NameString() string {
	return utf16ToString(p.Name[:])
}

// Erase clears all modes and recreates mode 0, selecting it, per spec
// §4.3 `eraseprofile` / §8 invariant: modecount == 1, currentmode ==
// modes[0], immediately after the call — currentmode is never briefly
// dangling, matching the single-statement reseat in the upstream C
// daemon's eraseprofile()+getusbmode(0,...) sequence.
func (p *Profile) Erase() {
	p.Modes = []Mode{*NewMode()}
	p.Current = 0
}
