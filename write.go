package pngme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// WriteOptions configures EncodeFile and RemoveFile.
type WriteOptions struct {
	// Output is the destination path. Empty means the source path; for URL
	// sources it means DefaultOutput.
	Output string
	// Compression applies to messages written by EncodeFile.
	Compression Compression
	// Read configures how the source is loaded.
	Read *ReadOptions
}

// DefaultOutput is where EncodeFile writes when the source is a URL and no
// output path is given.
const DefaultOutput = "output.png"

// WriteFile writes the encoded PNG to path, replacing any existing file.
// The bytes go to a temporary file in the same directory which is then
// renamed over path, so a failed write leaves the old file intact. An
// existing file keeps its permissions.
func WriteFile(p *PNG, path string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrCreateFile, path, err)
	}
	tmpPath := f.Name()

	if err := writeTemp(f, p, mode); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %q: %w", ErrWriteFile, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %q: %v", ErrWriteFile, path, err)
	}

	return nil
}

func writeTemp(f *os.File, p *PNG, mode os.FileMode) error {
	if _, err := p.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// EncodeFile appends a chunkType chunk carrying msg to the PNG at src and
// writes the result. It returns the path written.
func EncodeFile(ctx context.Context, src, chunkType string, msg []byte, opts *WriteOptions) (string, error) {
	if opts == nil {
		opts = &WriteOptions{}
	}

	c, err := NewMessageChunk(chunkType, msg, opts.Compression)
	if err != nil {
		return "", err
	}

	p, err := Open(ctx, src, opts.Read)
	if err != nil {
		return "", err
	}
	p.AppendChunk(c)

	out := outputPath(src, opts.Output)
	if err := WriteFile(p, out); err != nil {
		return "", err
	}

	return out, nil
}

// DecodeFile returns the decoded message of the first chunkType chunk in
// the PNG at src. It fails with ErrChunkNotFound when there is none.
// A payload that carries the envelope magic but does not decode as an
// envelope was written by something else and is returned verbatim; use
// Chunk.Message for strict decoding.
func DecodeFile(ctx context.Context, src, chunkType string, opts *ReadOptions) ([]byte, error) {
	if _, err := ParseChunkType(chunkType); err != nil {
		return nil, err
	}

	p, err := Open(ctx, src, opts)
	if err != nil {
		return nil, err
	}

	c := p.ChunkByType(chunkType)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", ErrChunkNotFound, chunkType)
	}

	msg, err := c.Message()
	if err != nil {
		return c.Data(), nil
	}

	return msg, nil
}

// RemoveFile removes the first chunkType chunk from the PNG at src, writes
// the result and returns the removed chunk.
func RemoveFile(ctx context.Context, src, chunkType string, opts *WriteOptions) (*Chunk, error) {
	if opts == nil {
		opts = &WriteOptions{}
	}

	p, err := Open(ctx, src, opts.Read)
	if err != nil {
		return nil, err
	}

	c, err := p.RemoveFirstChunk(chunkType)
	if err != nil {
		return nil, err
	}

	if err := WriteFile(p, outputPath(src, opts.Output)); err != nil {
		return nil, err
	}

	return c, nil
}

func outputPath(src, output string) string {
	switch {
	case output != "":
		return output
	case IsURL(src):
		return DefaultOutput
	default:
		return src
	}
}
