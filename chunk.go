package pngme

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

const (
	// chunkLengthSize is the size of the big-endian length field.
	chunkLengthSize = 4
	// chunkTypeSize is the size of the type code.
	chunkTypeSize = 4
	// chunkCRCSize is the size of the trailing CRC-32.
	chunkCRCSize = 4

	// MinChunkSize is the size of a chunk frame with an empty payload.
	MinChunkSize = chunkLengthSize + chunkTypeSize + chunkCRCSize
)

// Chunk is one length-prefixed, checksummed unit of a PNG file.
// The CRC is derived from type and payload and cannot be set directly.
type Chunk struct {
	chunkType ChunkType
	data      []byte
	crc       uint32
}

// NewChunk builds a chunk from a type and payload and computes its CRC.
// The payload is copied. Payloads longer than the 32-bit length field
// cannot be serialized; MarshalBinary and WriteTo reject them.
func NewChunk(chunkType ChunkType, data []byte) *Chunk {
	owned := make([]byte, len(data))
	copy(owned, data)

	return &Chunk{
		chunkType: chunkType,
		data:      owned,
		crc:       checksum(chunkType, owned),
	}
}

// ParseChunk decodes exactly one chunk frame:
//
//	length:4 | type:4 | data:length | crc:4
//
// The whole of b must be the frame; trailing bytes are a length mismatch.
func ParseChunk(b []byte) (*Chunk, error) {
	if len(b) < MinChunkSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrIncomplete, MinChunkSize, len(b))
	}

	length := binary.BigEndian.Uint32(b[:chunkLengthSize])
	expected, err := u32FromInt(len(b) - MinChunkSize)
	if err != nil || expected != length {
		return nil, &LengthMismatchError{Expected: expected, Found: length}
	}

	var raw [4]byte
	copy(raw[:], b[chunkLengthSize:chunkLengthSize+chunkTypeSize])
	chunkType, err := ChunkTypeFromBytes(raw)
	if err != nil {
		return nil, err
	}

	dataStart := chunkLengthSize + chunkTypeSize
	dataEnd := len(b) - chunkCRCSize
	stored := binary.BigEndian.Uint32(b[dataEnd:])

	c := NewChunk(chunkType, b[dataStart:dataEnd])
	if c.crc != stored {
		return nil, fmt.Errorf("%w: stored %d, computed %d", ErrChecksumMismatch, stored, c.crc)
	}

	return c, nil
}

// Length returns the payload size in bytes.
func (c *Chunk) Length() uint32 {
	// #nosec G115 -- a chunk payload never exceeds the 32-bit length field.
	return uint32(len(c.data))
}

// Type returns the chunk type.
func (c *Chunk) Type() ChunkType {
	return c.chunkType
}

// Data returns a copy of the payload.
func (c *Chunk) Data() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// CRC returns the CRC-32 over type and payload.
func (c *Chunk) CRC() uint32 {
	return c.crc
}

// Digest returns the xxhash64 of the payload. It is a diagnostic fingerprint
// and plays no part in the wire format.
func (c *Chunk) Digest() uint64 {
	return xxhash.Sum64(c.data)
}

// DataString interprets the payload as UTF-8 text.
func (c *Chunk) DataString() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: %s chunk", ErrInvalidEncoding, c.chunkType)
	}

	return string(c.data), nil
}

// Bytes renders the chunk frame. It is the exact inverse of ParseChunk.
// The payload must fit the 32-bit length field; see checkSize.
func (c *Chunk) Bytes() []byte {
	return c.appendTo(make([]byte, 0, MinChunkSize+len(c.data)))
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c *Chunk) MarshalBinary() ([]byte, error) {
	if err := c.checkSize(); err != nil {
		return nil, err
	}

	return c.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using ParseChunk.
func (c *Chunk) UnmarshalBinary(b []byte) error {
	parsed, err := ParseChunk(b)
	if err != nil {
		return err
	}

	*c = *parsed
	return nil
}

// WriteTo writes the chunk frame to w.
func (c *Chunk) WriteTo(w io.Writer) (int64, error) {
	if err := c.checkSize(); err != nil {
		return 0, err
	}

	n, err := w.Write(c.Bytes())
	return int64(n), err
}

// Equal reports whether both chunks have the same type, payload and CRC.
func (c *Chunk) Equal(o *Chunk) bool {
	if c == nil || o == nil {
		return c == o
	}

	return c.chunkType == o.chunkType && c.crc == o.crc && bytes.Equal(c.data, o.data)
}

func (c *Chunk) String() string {
	text, err := c.DataString()
	if err != nil {
		text = "<invalid UTF-8>"
	}

	return fmt.Sprintf("{ length: %4d type: %s, data: %s, crc %10d }", c.Length(), c.chunkType, text, c.crc)
}

// checkSize fails with ErrSizeOverflow when the payload does not fit the
// length field.
func (c *Chunk) checkSize() error {
	return payloadSize(c.chunkType, len(c.data))
}

func payloadSize(chunkType ChunkType, n int) error {
	if _, err := u32FromInt(n); err != nil {
		return fmt.Errorf("%w: %s payload is %d bytes", err, chunkType, n)
	}

	return nil
}

// appendTo appends the chunk frame to dst.
func (c *Chunk) appendTo(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, c.Length())
	dst = append(dst, c.chunkType[:]...)
	dst = append(dst, c.data...)
	return binary.BigEndian.AppendUint32(dst, c.crc)
}

// checksum computes the CRC-32 (IEEE) over type and payload.
func checksum(chunkType ChunkType, data []byte) uint32 {
	crc := crc32.Update(0, crc32.IEEETable, chunkType[:])
	return crc32.Update(crc, crc32.IEEETable, data)
}
