package model

import "unicode/utf16"

// stringToUTF16 encodes s as UTF-16 code units, truncated to at most max.
func stringToUTF16(s string, max int) []uint16 {
	units := utf16.Encode([]rune(s))
	if len(units) > max {
		units = units[:max]
	}
	return units
}

// utf16ToString decodes a fixed UTF-16 buffer back to a Go string,
// stopping at the first zero code unit (or the end of the buffer).
func utf16ToString(units []uint16) string {
	for i, u := range units {
		if u == 0 {
			units = units[:i]
			break
		}
	}
	return string(utf16.Decode(units))
}
