package opcode

// IVA is the variable-length unsigned integer encoding used for most
// immediates: a single byte when the value fits in 7 bits, otherwise
// enough 7-bit groups with the continuation bit set on every byte but
// the last.

// IVASize returns the number of bytes required to encode x as an IVA.
func IVASize(x uint32) int {
	n := 1
	for x >= 0x80 {
		n++
		x >>= 7
	}
	return n
}

// AppendIVA appends the IVA encoding of x to buf and returns the
// extended slice.
func AppendIVA(buf []byte, x uint32) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x)|0x80)
		x >>= 7
	}
	return append(buf, byte(x))
}

// DecodeIVA reads an IVA starting at buf[0], returning the decoded value
// and the number of bytes consumed.
func DecodeIVA(buf []byte) (uint32, int) {
	var x uint32
	var shift uint
	for i, b := range buf {
		x |= uint32(b&0x7f) << shift
		if b < 0x80 {
			return x, i + 1
		}
		shift += 7
	}
	return x, len(buf)
}

// AppendInt32 appends x as a fixed little-endian 4-byte signed value,
// used for 32-bit relative branch offsets.
func AppendInt32(buf []byte, x int32) []byte {
	return append(buf, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
}

// AppendUint32 appends x as a fixed little-endian 4-byte value.
func AppendUint32(buf []byte, x uint32) []byte {
	return append(buf, byte(x), byte(x>>8), byte(x>>16), byte(x>>24))
}

// PutInt32 overwrites 4 bytes at buf[at:at+4] with x, little-endian. Used
// by the branch-fixup engine to back-patch a previously-emitted
// placeholder once its target offset is known.
func PutInt32(buf []byte, at int, x int32) {
	buf[at] = byte(x)
	buf[at+1] = byte(x >> 8)
	buf[at+2] = byte(x >> 16)
	buf[at+3] = byte(x >> 24)
}

// AppendUint64 appends x as a fixed little-endian 8-byte value, used for
// the Int opcode's 64-bit signed immediate (reinterpreted as bits).
func AppendUint64(buf []byte, x uint64) []byte {
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(x>>(8*i)))
	}
	return buf
}
