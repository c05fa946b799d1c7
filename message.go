package pngme

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how a message payload is stored inside its chunk.
type Compression uint8

const (
	// CompressionNone stores the message verbatim.
	CompressionNone Compression = 0
	// CompressionLZ4 stores the message as an LZ4 HC block.
	CompressionLZ4 Compression = 1
	// CompressionZstd stores the message as a zstd frame.
	CompressionZstd Compression = 2
)

const (
	// envelopeMagic marks an enveloped payload. A leading NUL keeps it apart
	// from ordinary text messages.
	envelopeMagic = "\x00pz"

	// envelopeHeaderSize is magic(3) + codec(1) + plain length(4) + xxhash64(8).
	envelopeHeaderSize = len(envelopeMagic) + 1 + 4 + 8

	// maxLZ4Ratio bounds the inflated size an LZ4 block may claim.
	maxLZ4Ratio = 255
	// maxZstdRatio bounds the inflated size a zstd frame may claim.
	maxZstdRatio = 1024
)

// ParseCompression parses "none", "lz4" or "zstd". The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return CompressionNone, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// EncodeMessage prepares msg for storage as a chunk payload.
//
// CompressionNone returns msg unchanged, unless msg itself starts with the
// envelope magic, in which case it is wrapped in a stored envelope so that
// DecodeMessage returns it intact. Compressed forms fall back to the same
// stored encoding when compression saves less than 15%, or when the ratio
// exceeds what DecodeMessage accepts for the codec.
//
// The prefix "\x00pz" is reserved: payloads written by other tools that
// start with it are not guaranteed to pass DecodeMessage.
func EncodeMessage(msg []byte, c Compression) ([]byte, error) {
	var body []byte
	switch c {
	case CompressionNone:
		return storeMessage(msg)
	case CompressionLZ4:
		out, err := compressLZ4(msg)
		if err != nil {
			return nil, err
		}
		body = out
	case CompressionZstd:
		out, err := compressZstd(msg)
		if err != nil {
			return nil, err
		}
		body = out
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(c))
	}

	if body == nil || float64(envelopeHeaderSize+len(body)) > float64(len(msg))*0.85 {
		return storeMessage(msg)
	}
	if uint64(len(msg)) > uint64(len(body))*maxRatio(c) {
		return storeMessage(msg)
	}

	return envelope(c, msg, body)
}

// DecodeMessage reverses EncodeMessage. Payloads without the envelope magic
// are returned as they are. The declared plain length bounds every
// allocation made while inflating.
func DecodeMessage(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, []byte(envelopeMagic)) {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	if len(data) < envelopeHeaderSize {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrEnvelopeTruncated, envelopeHeaderSize, len(data))
	}

	hdr := data[len(envelopeMagic):envelopeHeaderSize]
	codec := Compression(hdr[0])
	plainLen := binary.BigEndian.Uint32(hdr[1:5])
	digest := binary.BigEndian.Uint64(hdr[5:13])
	body := data[envelopeHeaderSize:]

	var (
		plain []byte
		err   error
	)
	switch codec {
	case CompressionNone:
		plain = make([]byte, len(body))
		copy(plain, body)
	case CompressionLZ4:
		plain, err = decompressLZ4(body, plainLen)
	case CompressionZstd:
		plain, err = decompressZstd(body, plainLen)
	default:
		return nil, fmt.Errorf("%w: codec byte %d", ErrUnknownCompression, uint8(codec))
	}
	if err != nil {
		return nil, err
	}

	if uint64(len(plain)) != uint64(plainLen) {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDecodedSizeMismatch, plainLen, len(plain))
	}
	if got := xxhash.Sum64(plain); got != digest {
		return nil, fmt.Errorf("%w: expected %016x, got %016x", ErrMessageDigestMismatch, digest, got)
	}

	return plain, nil
}

// NewMessageChunk builds a chunk of the given textual type carrying msg
// encoded with c.
func NewMessageChunk(chunkType string, msg []byte, c Compression) (*Chunk, error) {
	t, err := ParseChunkType(chunkType)
	if err != nil {
		return nil, err
	}

	payload, err := EncodeMessage(msg, c)
	if err != nil {
		return nil, err
	}
	if _, err := u32FromInt(len(payload)); err != nil {
		return nil, fmt.Errorf("%w: message payload is %d bytes", err, len(payload))
	}

	return NewChunk(t, payload), nil
}

// Message returns the payload decoded with DecodeMessage.
func (c *Chunk) Message() ([]byte, error) {
	return DecodeMessage(c.data)
}

// storeMessage returns msg verbatim, or inside a stored envelope when it
// would otherwise be mistaken for one.
func storeMessage(msg []byte) ([]byte, error) {
	if bytes.HasPrefix(msg, []byte(envelopeMagic)) {
		return envelope(CompressionNone, msg, msg)
	}

	out := make([]byte, len(msg))
	copy(out, msg)
	return out, nil
}

func envelope(c Compression, plain, body []byte) ([]byte, error) {
	plainLen, err := u32FromInt(len(plain))
	if err != nil {
		return nil, fmt.Errorf("%w: message is %d bytes", err, len(plain))
	}

	out := make([]byte, 0, envelopeHeaderSize+len(body))
	out = append(out, envelopeMagic...)
	out = append(out, byte(c))
	out = binary.BigEndian.AppendUint32(out, plainLen)
	out = binary.BigEndian.AppendUint64(out, xxhash.Sum64(plain))
	out = append(out, body...)
	return out, nil
}

// compressLZ4 returns nil when the message does not compress.
func compressLZ4(msg []byte) ([]byte, error) {
	if len(msg) == 0 {
		return nil, nil
	}

	buf := make([]byte, lz4.CompressBlockBound(len(msg)))
	n, err := lz4.CompressBlockHC(msg, buf, 0, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrCompress, err)
	}
	if n == 0 {
		return nil, nil
	}

	return buf[:n], nil
}

func decompressLZ4(body []byte, plainLen uint32) ([]byte, error) {
	if uint64(plainLen) > uint64(len(body))*maxLZ4Ratio {
		return nil, fmt.Errorf("%w: %d bytes claimed from %d byte lz4 block", ErrDecodedSizeMismatch, plainLen, len(body))
	}

	dst := make([]byte, plainLen)
	n, err := lz4.UncompressBlock(body, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrDecompress, err)
	}

	return dst[:n], nil
}

func maxRatio(c Compression) uint64 {
	if c == CompressionLZ4 {
		return maxLZ4Ratio
	}

	return maxZstdRatio
}

func compressZstd(msg []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCompress, err)
	}
	defer func() { _ = enc.Close() }()

	return enc.EncodeAll(msg, nil), nil
}

// decompressZstd inflates at most plainLen bytes; longer frames fail.
func decompressZstd(body []byte, plainLen uint32) ([]byte, error) {
	if uint64(plainLen) > uint64(len(body))*maxZstdRatio {
		return nil, fmt.Errorf("%w: %d bytes claimed from %d byte zstd frame", ErrDecodedSizeMismatch, plainLen, len(body))
	}

	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecodeAllCapLimit(true),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompress, err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(body, make([]byte, 0, plainLen))
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompress, err)
	}

	return out, nil
}
