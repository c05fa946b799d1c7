package pngme

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Magic is the fixed 8-byte signature that starts every PNG file:
// 89 50 4E 47 0D 0A 1A 0A.
const Magic = "\x89PNG\r\n\x1a\n"

// PNG is a PNG file viewed as its ordered chunk sequence.
// Order is significant: lookups and removals act on the first match.
type PNG struct {
	chunks []*Chunk
}

// New builds a PNG from chunks, in the given order.
func New(chunks ...*Chunk) *PNG {
	p := &PNG{chunks: make([]*Chunk, 0, len(chunks))}
	p.chunks = append(p.chunks, chunks...)
	return p
}

// Parse decodes a complete PNG byte stream into its chunks.
// The IEND chunk, when present, is kept as an ordinary chunk.
func Parse(b []byte) (*PNG, error) {
	if !bytes.HasPrefix(b, []byte(Magic)) {
		n := min(len(b), len(Magic))
		return nil, fmt.Errorf("%w: got % x", ErrBadSignature, b[:n])
	}

	p := &PNG{}
	for off := len(Magic); off < len(b); {
		rest := b[off:]
		span := frameSpan(rest)

		c, err := ParseChunk(rest[:span])
		if err != nil {
			return nil, &ChunkParseError{Index: len(p.chunks), Offset: off, Err: err}
		}

		p.chunks = append(p.chunks, c)
		off += span
	}

	return p, nil
}

// frameSpan returns how many bytes of rest the next chunk frame claims.
// When the frame is cut short the whole remainder is returned, so that
// ParseChunk reports the failure.
func frameSpan(rest []byte) int {
	if len(rest) < chunkLengthSize {
		return len(rest)
	}

	n := uint64(binary.BigEndian.Uint32(rest)) + MinChunkSize
	if n > uint64(len(rest)) {
		return len(rest)
	}

	return int(n)
}

// Signature returns the file signature.
func (p *PNG) Signature() [8]byte {
	var sig [8]byte
	copy(sig[:], Magic)
	return sig
}

// Chunks returns the chunk sequence. The slice is a copy; the chunks are not.
func (p *PNG) Chunks() []*Chunk {
	out := make([]*Chunk, len(p.chunks))
	copy(out, p.chunks)
	return out
}

// Len returns the number of chunks.
func (p *PNG) Len() int {
	return len(p.chunks)
}

// AppendChunk adds c at the end of the chunk sequence.
func (p *PNG) AppendChunk(c *Chunk) {
	p.chunks = append(p.chunks, c)
}

// ChunkByType returns the first chunk whose type equals chunkType, or nil.
func (p *PNG) ChunkByType(chunkType string) *Chunk {
	if i := p.indexOf(chunkType); i >= 0 {
		return p.chunks[i]
	}

	return nil
}

// RemoveFirstChunk removes and returns the first chunk whose type equals
// chunkType. The order of the remaining chunks is preserved.
func (p *PNG) RemoveFirstChunk(chunkType string) (*Chunk, error) {
	i := p.indexOf(chunkType)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrChunkNotFound, chunkType)
	}

	c := p.chunks[i]
	p.chunks = slices.Delete(p.chunks, i, i+1)
	return c, nil
}

// Bytes renders the signature followed by every chunk frame.
// It is the exact inverse of Parse.
func (p *PNG) Bytes() []byte {
	size := len(Magic)
	for _, c := range p.chunks {
		size += MinChunkSize + len(c.data)
	}

	out := make([]byte, 0, size)
	out = append(out, Magic...)
	for _, c := range p.chunks {
		out = c.appendTo(out)
	}

	return out
}

// WriteTo writes the encoded PNG to w. It fails with ErrSizeOverflow before
// writing anything if a chunk payload does not fit its length field.
func (p *PNG) WriteTo(w io.Writer) (int64, error) {
	for _, c := range p.chunks {
		if err := c.checkSize(); err != nil {
			return 0, err
		}
	}

	n, err := w.Write(p.Bytes())
	return int64(n), err
}

// CID returns the CIDv1 (raw codec, sha2-256) of the encoded PNG.
func (p *PNG) CID() (string, error) {
	sum, err := multihash.Sum(p.Bytes(), multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}

	return cid.NewCidV1(cid.Raw, sum).String(), nil
}

func (p *PNG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "signature: %v\n", p.Signature())
	for _, c := range p.chunks {
		sb.WriteString(c.String())
		sb.WriteByte('\n')
	}

	return sb.String()
}

func (p *PNG) indexOf(chunkType string) int {
	for i, c := range p.chunks {
		if c.chunkType.String() == chunkType {
			return i
		}
	}

	return -1
}
