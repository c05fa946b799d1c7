package pngme

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTypeCode indicates chunk type bytes that are not ASCII letters.
	ErrInvalidTypeCode = errors.New("chunk type is not ASCII letters")
	// ErrInvalidLength indicates a textual chunk type that is not 4 bytes long.
	ErrInvalidLength = errors.New("invalid chunk type length")
	// ErrIncomplete indicates a chunk span shorter than the 12-byte minimum frame.
	ErrIncomplete = errors.New("chunk did not contain all the required data")
	// ErrLengthMismatch indicates a chunk length field that disagrees with its span.
	ErrLengthMismatch = errors.New("invalid length field")
	// ErrChecksumMismatch indicates a stored CRC that differs from the computed one.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrBadSignature indicates input that does not start with the PNG signature.
	ErrBadSignature = errors.New("bad PNG signature")
	// ErrChunkParse indicates a chunk inside a container failed to parse.
	ErrChunkParse = errors.New("parse chunk failed")
	// ErrChunkNotFound indicates no chunk of the requested type exists.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrInvalidEncoding indicates a payload that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8 payload")
	// ErrSizeOverflow indicates a size exceeds supported limits.
	ErrSizeOverflow = errors.New("size overflow")
	// ErrOpenFile indicates PNG file open failed.
	ErrOpenFile = errors.New("open file failed")
	// ErrReadFile indicates PNG file read failed.
	ErrReadFile = errors.New("read file failed")
	// ErrCreateFile indicates file creation failed.
	ErrCreateFile = errors.New("create file failed")
	// ErrWriteFile indicates writing PNG bytes failed.
	ErrWriteFile = errors.New("write file failed")
	// ErrFetch indicates retrieving a PNG over HTTP failed.
	ErrFetch = errors.New("fetch failed")
	// ErrInputTooLarge indicates input exceeds the configured read limit.
	ErrInputTooLarge = errors.New("input data too large")
	// ErrUnknownCompression indicates an unsupported message compression.
	ErrUnknownCompression = errors.New("unknown compression")
	// ErrCompress indicates message compression failed.
	ErrCompress = errors.New("compress message failed")
	// ErrDecompress indicates message decompression failed.
	ErrDecompress = errors.New("decompress message failed")
	// ErrEnvelopeTruncated indicates a message envelope shorter than its header.
	ErrEnvelopeTruncated = errors.New("message envelope truncated")
	// ErrDecodedSizeMismatch indicates a decompressed size mismatch.
	ErrDecodedSizeMismatch = errors.New("decoded message size mismatch")
	// ErrMessageDigestMismatch indicates a decoded message failed its digest check.
	ErrMessageDigestMismatch = errors.New("message digest mismatch")
)

// LengthMismatchError reports a chunk whose length field disagrees with the
// number of payload bytes actually present. It matches ErrLengthMismatch.
type LengthMismatchError struct {
	Expected uint32
	Found    uint32
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%v (expected %d, found %d)", ErrLengthMismatch, e.Expected, e.Found)
}

// Is reports whether target is ErrLengthMismatch.
func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}

// ChunkParseError attributes a chunk failure to its position in a container.
// It matches ErrChunkParse and unwraps to the chunk-level cause.
type ChunkParseError struct {
	// Index is the zero-based position of the chunk in the sequence.
	Index int
	// Offset is the byte offset of the chunk frame from the start of the file.
	Offset int
	Err    error
}

func (e *ChunkParseError) Error() string {
	return fmt.Sprintf("%v: chunk %d at offset %d: %v", ErrChunkParse, e.Index, e.Offset, e.Err)
}

func (e *ChunkParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrChunkParse.
func (e *ChunkParseError) Is(target error) bool {
	return target == ErrChunkParse
}
