package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_LengthAndAlphabet(t *testing.T) {
	gen := NanoID(12)
	id := gen()
	if len(id) != 12 {
		t.Fatalf("length: got %d, want 12", len(id))
	}
	for _, c := range id {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z') {
			t.Errorf("character %q outside base-36 alphabet", c)
		}
	}
}

func TestNanoID_Unique(t *testing.T) {
	gen := NanoID(16)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate ID %q", id)
		}
		seen[id] = true
	}
}

func TestUUIDv7_Sortable(t *testing.T) {
	gen := UUIDv7()
	a, b := gen(), gen()
	if a >= b {
		t.Errorf("UUIDv7 not time-ordered: %q >= %q", a, b)
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("sess_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("prefix: got %q", id)
	}
	if len(id) != len("sess_")+8 {
		t.Errorf("length: got %d", len(id))
	}
}
