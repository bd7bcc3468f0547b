package keymap

import "testing"

func TestIndex_RoundTripsWithName(t *testing.T) {
	tests := []string{"a", "z", "1", "0", "enter", "g1", "g18", "lctrl", "voldn"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			i, ok := Index(name)
			if !ok {
				t.Fatalf("Index(%q) not found", name)
			}
			if got := Name(i); got != name {
				t.Errorf("Name(%d) = %q, want %q", i, got, name)
			}
		})
	}
}

func TestIndex_Unknown(t *testing.T) {
	if _, ok := Index("nonexistent-key"); ok {
		t.Errorf("Index for unknown name reported ok=true")
	}
}

func TestName_OutOfRange(t *testing.T) {
	if got := Name(-1); got != "" {
		t.Errorf("Name(-1) = %q, want empty", got)
	}
	if got := Name(NKeys); got != "" {
		t.Errorf("Name(NKeys) = %q, want empty", got)
	}
}

func TestGKeyNames(t *testing.T) {
	for i := 1; i <= 18; i++ {
		want := "g"
		if i >= 10 {
			want += string(rune('0' + i/10))
		}
		want += string(rune('0' + i%10))
		idx, ok := Index(want)
		if !ok {
			t.Fatalf("Index(%q) not found", want)
		}
		if Name(idx) != want {
			t.Errorf("Name(%d) = %q, want %q", idx, Name(idx), want)
		}
	}
}
