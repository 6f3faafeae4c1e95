package opcode

import (
	"strings"
	"testing"
)

func TestOpcodeString(t *testing.T) {
	for op := Opcode(0); op <= OpcodeMax; op++ {
		if opcodeNames[op] == "" {
			t.Errorf("missing string representation of opcode %d", op)
		}
		if s := op.String(); strings.Contains(s, "illegal") {
			t.Errorf("invalid string representation of opcode %d", op)
		}
	}
}

func TestIsJump(t *testing.T) {
	for _, op := range []Opcode{Jmp, JmpZ, JmpNZ, Switch, SSwitch} {
		if !IsJump(op) {
			t.Errorf("%s should be a jump opcode", op)
		}
	}
	for _, op := range []Opcode{Nop, Pop, CGetL, RetC, FCall} {
		if IsJump(op) {
			t.Errorf("%s should not be a jump opcode", op)
		}
	}
}

func TestIVARoundTrip(t *testing.T) {
	cases := []uint32{0, 1, 127, 128, 300, 1 << 20, 1<<32 - 1}
	for _, x := range cases {
		buf := AppendIVA(nil, x)
		if got := IVASize(x); got != len(buf) {
			t.Errorf("IVASize(%d) = %d, want %d", x, got, len(buf))
		}
		got, n := DecodeIVA(buf)
		if n != len(buf) {
			t.Errorf("DecodeIVA consumed %d bytes, want %d", n, len(buf))
		}
		if got != x {
			t.Errorf("DecodeIVA round-trip: got %d, want %d", got, x)
		}
	}
}

func TestPutInt32(t *testing.T) {
	buf := AppendInt32(make([]byte, 0, 4), 0)
	PutInt32(buf, 0, -12345)
	got, n := int32(buf[0])|int32(buf[1])<<8|int32(buf[2])<<16|int32(buf[3])<<24, len(buf)
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}
	if got != -12345 {
		t.Errorf("PutInt32 round-trip: got %d, want -12345", got)
	}
}
