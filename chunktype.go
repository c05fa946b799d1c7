package pngme

import (
	"fmt"
	"strings"
)

// propertyBit is bit 5 of a type byte; its state carries the chunk properties.
const propertyBit = 1 << 5

// Byte positions of the property bits inside a chunk type.
const (
	ancillaryByte = iota
	privateByte
	reservedByte
	safeToCopyByte
)

// ChunkType is a 4-letter chunk type code. Letter case encodes the
// ancillary, private, reserved and safe-to-copy properties.
type ChunkType [4]byte

// ChunkTypeFromBytes returns the chunk type for b.
// Every byte must be an ASCII letter.
func ChunkTypeFromBytes(b [4]byte) (ChunkType, error) {
	for i, c := range b {
		if !isLetter(c) {
			return ChunkType{}, fmt.Errorf("%w: byte %d is 0x%02x", ErrInvalidTypeCode, i, c)
		}
	}

	return ChunkType(b), nil
}

// ParseChunkType parses a 4-byte textual chunk type such as "IHDR" or "ruSt".
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != len(ChunkType{}) {
		return ChunkType{}, fmt.Errorf("%w: expected 4 bytes, got %d", ErrInvalidLength, len(s))
	}

	var b [4]byte
	copy(b[:], s)
	return ChunkTypeFromBytes(b)
}

// Bytes returns the raw type bytes.
func (t ChunkType) Bytes() [4]byte {
	return t
}

// IsCritical reports whether decoders must understand the chunk.
func (t ChunkType) IsCritical() bool {
	return t[ancillaryByte]&propertyBit == 0
}

// IsPublic reports whether the type is registered rather than private.
func (t ChunkType) IsPublic() bool {
	return t[privateByte]&propertyBit == 0
}

// IsReservedBitValid reports whether the reserved bit is clear.
func (t ChunkType) IsReservedBitValid() bool {
	return t[reservedByte]&propertyBit == 0
}

// IsSafeToCopy reports whether editors unaware of the type may copy it.
func (t ChunkType) IsSafeToCopy() bool {
	return t[safeToCopyByte]&propertyBit != 0
}

// IsValid reports whether the type conforms to the current PNG revision.
// Parsing never rejects types for which IsValid is false.
func (t ChunkType) IsValid() bool {
	return t.IsReservedBitValid()
}

func (t ChunkType) String() string {
	return string(t[:])
}

// Flags renders the properties as a short diagnostic string,
// e.g. "critical,private,safe-to-copy".
func (t ChunkType) Flags() string {
	flags := make([]string, 0, 4)
	if t.IsCritical() {
		flags = append(flags, "critical")
	} else {
		flags = append(flags, "ancillary")
	}
	if t.IsPublic() {
		flags = append(flags, "public")
	} else {
		flags = append(flags, "private")
	}
	if !t.IsReservedBitValid() {
		flags = append(flags, "reserved-set")
	}
	if t.IsSafeToCopy() {
		flags = append(flags, "safe-to-copy")
	} else {
		flags = append(flags, "unsafe-to-copy")
	}

	return strings.Join(flags, ",")
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
