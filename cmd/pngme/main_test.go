package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/pngme"
)

func writeSamplePNG(t *testing.T) string {
	t.Helper()

	ihdr := []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}
	p := pngme.New(
		pngme.NewChunk(pngme.ChunkType{'I', 'H', 'D', 'R'}, ihdr),
		pngme.NewChunk(pngme.ChunkType{'I', 'E', 'N', 'D'}, nil),
	)

	path := filepath.Join(t.TempDir(), "sample.png")
	if err := pngme.WriteFile(p, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no-args", args: nil, want: 2},
		{name: "help", args: []string{"help"}, want: 0},
		{name: "unknown", args: []string{"frobnicate"}, want: 2},
		{name: "encode-missing-args", args: []string{"encode", "a.png"}, want: 2},
		{name: "decode-extra-args", args: []string{"decode", "a.png", "ruSt", "x"}, want: 2},
		{name: "remove-missing-args", args: []string{"remove", "a.png"}, want: 2},
		{name: "print-missing-args", args: []string{"print"}, want: 2},
		{name: "bad-flag", args: []string{"print", "--nope", "a.png"}, want: 2},
		{name: "bad-compress", args: []string{"encode", "--compress", "gzip", "a.png", "ruSt", "msg"}, want: 2},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			code, _, _ := runCLI(t, tc.args...)
			if code != tc.want {
				t.Fatalf("exit code = %d, want %d", code, tc.want)
			}
		})
	}
}

func TestEncodeDecodeRemovePrint(t *testing.T) {
	t.Parallel()

	path := writeSamplePNG(t)

	code, out, errOut := runCLI(t, "encode", path, "ruSt", "hidden")
	if code != 0 {
		t.Fatalf("encode exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(out) != path {
		t.Fatalf("encode printed %q, want %q", out, path)
	}

	code, out, errOut = runCLI(t, "decode", path, "ruSt")
	if code != 0 {
		t.Fatalf("decode exit %d: %s", code, errOut)
	}
	if out != "hidden\n" {
		t.Fatalf("decode printed %q, want %q", out, "hidden\n")
	}

	code, out, errOut = runCLI(t, "print", path)
	if code != 0 {
		t.Fatalf("print exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "type: ruSt, data: hidden") {
		t.Fatalf("print output missing chunk: %q", out)
	}

	code, out, errOut = runCLI(t, "print", "-v", path)
	if code != 0 {
		t.Fatalf("print -v exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "cid: bafkrei") || !strings.Contains(out, "ancillary,private,safe-to-copy") {
		t.Fatalf("print -v output = %q", out)
	}

	code, out, errOut = runCLI(t, "remove", path, "ruSt")
	if code != 0 {
		t.Fatalf("remove exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "type: ruSt") {
		t.Fatalf("remove printed %q", out)
	}

	code, out, errOut = runCLI(t, "decode", path, "ruSt")
	if code != 0 {
		t.Fatalf("decode after remove exit %d: %s", code, errOut)
	}
	if out != "" || !strings.Contains(errOut, "chunk type ruSt not found") {
		t.Fatalf("decode after remove: out=%q err=%q", out, errOut)
	}

	code, _, errOut = runCLI(t, "remove", path, "ruSt")
	if code != 1 || !strings.Contains(errOut, "chunk not found") {
		t.Fatalf("second remove: exit %d err=%q", code, errOut)
	}
}

func TestEncodeWithConfigAndOutput(t *testing.T) {
	t.Parallel()

	path := writeSamplePNG(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pngme.json")
	if err := os.WriteFile(cfgPath, []byte(`{"compression":"lz4","fetch_timeout":"5s"}`), 0o644); err != nil {
		t.Fatalf("os.WriteFile: %v", err)
	}
	outPath := filepath.Join(dir, "out.png")
	msg := strings.Repeat("the eagle lands at midnight. ", 50)

	code, _, errOut := runCLI(t, "encode", "--config", cfgPath, path, "ruSt", msg, outPath)
	if code != 0 {
		t.Fatalf("encode exit %d: %s", code, errOut)
	}

	p, err := pngme.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	c := p.ChunkByType("ruSt")
	if c == nil {
		t.Fatalf("ruSt chunk missing")
	}
	if int(c.Length()) >= len(msg) {
		t.Fatalf("config compression not applied: %d bytes", c.Length())
	}

	code, out, errOut := runCLI(t, "decode", outPath, "ruSt")
	if code != 0 {
		t.Fatalf("decode exit %d: %s", code, errOut)
	}
	if out != msg+"\n" {
		t.Fatalf("decoded message mismatch")
	}

	orig, err := pngme.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if orig.ChunkByType("ruSt") != nil {
		t.Fatalf("input modified when output was given")
	}
}

func TestDecodeInvalidUTF8(t *testing.T) {
	t.Parallel()

	path := writeSamplePNG(t)
	p, err := pngme.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	p.AppendChunk(pngme.NewChunk(pngme.ChunkType{'r', 'u', 'S', 't'}, []byte{0xff, 0xfe}))
	if err := pngme.WriteFile(p, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	code, _, errOut := runCLI(t, "decode", path, "ruSt")
	if code != 1 || !strings.Contains(errOut, "invalid UTF-8") {
		t.Fatalf("exit %d err=%q", code, errOut)
	}
}

func TestLoadConfigValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "empty-object", body: `{}`},
		{name: "full", body: `{"compression":"zstd","fetch_timeout":"1m","max_fetch_bytes":1024}`},
		{name: "bad-compression", body: `{"compression":"brotli"}`, wantErr: true},
		{name: "bad-timeout", body: `{"fetch_timeout":"soon"}`, wantErr: true},
		{name: "negative-timeout", body: `{"fetch_timeout":"-1s"}`, wantErr: true},
		{name: "negative-limit", body: `{"max_fetch_bytes":-1}`, wantErr: true},
		{name: "not-json", body: `compression = lz4`, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, tc.name+".json")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("os.WriteFile: %v", err)
			}
			_, err := LoadConfig(path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("LoadConfig error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\"): %v", err)
	}
	if opts := cfg.ReadOptions(); opts.HTTPClient != nil || opts.MaxBytes != 0 {
		t.Fatalf("zero config produced non-default read options: %+v", opts)
	}
}
