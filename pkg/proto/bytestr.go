package proto

import "bytes"

// ByteStr is an opaque immutable byte sequence with equality by
// content, used for asset ids, script bodies, and binary data entries.
type ByteStr []byte

// Equal reports whether b and other hold the same bytes.
func (b ByteStr) Equal(other ByteStr) bool {
	return bytes.Equal(b, other)
}

func (b ByteStr) Bytes() []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func NewByteStr(b []byte) ByteStr {
	return ByteStr(append([]byte(nil), b...))
}
