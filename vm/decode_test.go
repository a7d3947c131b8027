package vm

import "testing"

func TestDecodeModeDigits(t *testing.T) {
	// 1002: opcode 02 (Mul), modes 0,1,0 for params 0,1,2.
	cases := []struct {
		word  Cell
		index int
		want  Mode
	}{
		{1002, 0, Position},
		{1002, 1, Immediate},
		{1002, 2, Position},
		{21102, 0, Immediate},
		{21102, 1, Immediate},
		{21102, 2, Relative},
	}
	for _, c := range cases {
		got, err := decodeMode(c.word, c.index)
		if err != nil {
			t.Fatalf("decodeMode(%d, %d): %v", c.word, c.index, err)
		}
		if got != c.want {
			t.Errorf("decodeMode(%d, %d) = %v, want %v", c.word, c.index, got, c.want)
		}
	}
}

func TestDecodeUnknownModeDigitFatal(t *testing.T) {
	_, err := decodeMode(3002, 1) // mode digit 3
	if err == nil {
		t.Fatal("expected error for unknown mode digit")
	}
}

func TestDecodeAddInstruction(t *testing.T) {
	m, err := NewMemory("1,9,10,3,2,3,11,0,99,30,40,50")
	if err != nil {
		t.Fatal(err)
	}
	inst, err := Decode(m, 0)
	if err != nil {
		t.Fatal(err)
	}
	if inst.Op != OpAdd || inst.Width != 4 {
		t.Fatalf("got op=%v width=%d, want Add/4", inst.Op, inst.Width)
	}
	if inst.A.Raw != 9 || inst.B.Raw != 10 || inst.D.Raw != 3 {
		t.Fatalf("got A=%d B=%d D=%d, want 9/10/3", inst.A.Raw, inst.B.Raw, inst.D.Raw)
	}
}

func TestDecodeUnknownOpcodeFatal(t *testing.T) {
	m, err := NewMemory("50")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decode(m, 0)
	if err == nil {
		t.Fatal("expected error for unknown opcode")
	}
	if f, ok := err.(*Fault); !ok || f.Kind != ErrMalformedProgram || f.IP != 0 {
		t.Fatalf("got %#v, want Fault{Kind: ErrMalformedProgram, IP: 0}", err)
	}
}

func TestWriteAddressImmediateFatal(t *testing.T) {
	p := Param{Mode: Immediate, Raw: 5}
	_, err := p.writeAddress(0)
	if err == nil {
		t.Fatal("expected error: immediate-mode write target")
	}
}

func TestWriteAddressRelative(t *testing.T) {
	p := Param{Mode: Relative, Raw: 5}
	addr, err := p.writeAddress(100)
	if err != nil {
		t.Fatal(err)
	}
	if addr != 105 {
		t.Fatalf("writeAddress = %d, want 105", addr)
	}
}

func TestNegativeResolvedAddressFatal(t *testing.T) {
	p := Param{Mode: Relative, Raw: -5}
	if _, err := p.writeAddress(1); err == nil {
		t.Fatal("expected error for negative resolved write address")
	}
	rp := Param{Mode: Relative, Raw: -5}
	mem, _ := NewMemory("0")
	if _, err := rp.readValue(mem, 1); err == nil {
		t.Fatal("expected error for negative resolved read address")
	}
}
