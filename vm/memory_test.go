package vm

import "testing"

func TestMemoryGetPastEndIsZeroAndNoGrowth(t *testing.T) {
	m, err := NewMemory("1,2,3")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Get(10); got != 0 {
		t.Fatalf("Get(10) = %d, want 0", got)
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (unchanged)", m.Len())
	}
}

func TestMemorySetGrowsWithZeroFill(t *testing.T) {
	m, err := NewMemory("1,2,3")
	if err != nil {
		t.Fatal(err)
	}
	m.Set(5, 42)
	if m.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", m.Len())
	}
	if got := m.Get(5); got != 42 {
		t.Fatalf("Get(5) = %d, want 42", got)
	}
	if got := m.Get(3); got != 0 {
		t.Fatalf("Get(3) = %d, want 0 (zero-filled)", got)
	}
}

func TestMemoryNeverShrinks(t *testing.T) {
	m, err := NewMemory("1,2,3,4,5")
	if err != nil {
		t.Fatal(err)
	}
	m.Set(1, 99)
	if m.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", m.Len())
	}
}

func TestMemoryParseFailureIsFatal(t *testing.T) {
	_, err := NewMemory("1,2,notanumber")
	if err == nil {
		t.Fatal("expected error for malformed program text")
	}
	if f, ok := err.(*Fault); !ok || f.Kind != ErrMalformedProgram {
		t.Fatalf("got %v, want *Fault wrapping ErrMalformedProgram", err)
	}
}

func TestMemorySnapshotRestoreIndependence(t *testing.T) {
	m, err := NewMemory("1,2,3")
	if err != nil {
		t.Fatal(err)
	}
	snap := m.Snapshot()
	m.Set(0, 999)
	if snap[0] != 1 {
		t.Fatalf("snapshot mutated by later Set: got %d, want 1", snap[0])
	}

	other, err := NewMemory("7,7,7")
	if err != nil {
		t.Fatal(err)
	}
	other.Restore(snap)
	if other.Get(0) != 1 {
		t.Fatalf("Restore did not take effect: got %d, want 1", other.Get(0))
	}
	snap[0] = -1
	if other.Get(0) != 1 {
		t.Fatalf("Restore was not a copy: mutating snap affected restored memory")
	}
}

func TestMemoryLargeIntegers(t *testing.T) {
	m, err := NewMemory("104,1125899906842624,99")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Get(1); got != 1125899906842624 {
		t.Fatalf("Get(1) = %d, want 1125899906842624", got)
	}
}
