package dimension

import "testing"

func TestHashTestVector(t *testing.T) {
	// Test vector from the spec: hashing the literal bytes "this is not
	// json" as if they were already the canonical encoding.
	got := Hash([]byte("this is not json"))
	want := uint32(0xf10b1d71)
	if got != want {
		t.Fatalf("Hash() = %#x, want %#x", got, want)
	}
}

func TestHashSetStableAndOrderIndependent(t *testing.T) {
	a := NewSingle(map[string]string{"OS": "Windows-3.1.1", "hostname": "x"})
	b := NewSingle(map[string]string{"hostname": "x", "OS": "Windows-3.1.1"})
	if HashSet(a) != HashSet(b) {
		t.Fatalf("hash must not depend on map iteration order")
	}
	if HashSet(a) != HashSet(a) {
		t.Fatalf("hash must be stable across repeated calls")
	}
}

func TestHashSetDiffersOnContent(t *testing.T) {
	a := NewSingle(map[string]string{"OS": "Windows-3.1.1"})
	b := NewSingle(map[string]string{"OS": "Windows-3.0"})
	if HashSet(a) == HashSet(b) {
		t.Fatalf("different dimensions hashed to the same value")
	}
}

func TestHashSetNormalizesSingleElementList(t *testing.T) {
	single := NewSingle(map[string]string{"OS": "Windows-3.1.1"})
	list := Set{"OS": Value{"Windows-3.1.1"}}
	if HashSet(single) != HashSet(list) {
		t.Fatalf("single-element list must hash the same as the bare string")
	}
}
