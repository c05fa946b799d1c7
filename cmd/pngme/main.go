package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/woozymasta/pngme"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "encode":
		return cmdEncode(ctx, args[1:], out, errOut)
	case "decode":
		return cmdDecode(ctx, args[1:], out, errOut)
	case "remove":
		return cmdRemove(ctx, args[1:], out, errOut)
	case "print":
		return cmdPrint(ctx, args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "pngme: hide messages in PNG chunks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pngme encode [--compress none|lz4|zstd] [--config <file>] <file|url> <chunk-type> <message> [output]")
	fmt.Fprintln(w, "  pngme decode [--config <file>] <file|url> <chunk-type>")
	fmt.Fprintln(w, "  pngme remove [--out <file>] [--config <file>] <file> <chunk-type>")
	fmt.Fprintln(w, "  pngme print [-v] [--config <file>] <file|url>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - chunk types are 4 ASCII letters; lowercase first letter keeps viewers from rejecting the file (e.g. ruSt)")
	fmt.Fprintln(w, "  - encode writes back to <file> unless [output] is given; URL sources default to "+pngme.DefaultOutput)
	fmt.Fprintln(w, "  - remove writes back to <file> unless --out is given")
	fmt.Fprintln(w, "  - --config reads JSON defaults: compression, fetch_timeout, max_fetch_bytes")
}

func cmdEncode(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var compress string
	var configPath string
	fs.StringVar(&compress, "compress", "", "Message compression: none, lz4 or zstd")
	fs.StringVar(&configPath, "config", "", "JSON config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 3 || fs.NArg() > 4 {
		fmt.Fprintln(errOut, "usage: pngme encode [--compress none|lz4|zstd] <file|url> <chunk-type> <message> [output]")
		return 2
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return 2
	}
	if compress == "" {
		compress = cfg.Compression
	}
	comp, err := pngme.ParseCompression(compress)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --compress: %v\n", err)
		return 2
	}

	opts := &pngme.WriteOptions{
		Output:      fs.Arg(3),
		Compression: comp,
		Read:        cfg.ReadOptions(),
	}
	path, err := pngme.EncodeFile(ctx, fs.Arg(0), fs.Arg(1), []byte(fs.Arg(2)), opts)
	if err != nil {
		fmt.Fprintf(errOut, "could not encode message into the file: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintln(out, path)
	return 0
}

func cmdDecode(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var configPath string
	fs.StringVar(&configPath, "config", "", "JSON config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(errOut, "usage: pngme decode <file|url> <chunk-type>")
		return 2
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return 2
	}

	chunkType := fs.Arg(1)
	msg, err := pngme.DecodeFile(ctx, fs.Arg(0), chunkType, cfg.ReadOptions())
	if errors.Is(err, pngme.ErrChunkNotFound) {
		fmt.Fprintf(errOut, "chunk type %s not found\n", chunkType)
		return 0
	}
	if err != nil {
		fmt.Fprintf(errOut, "could not decode the file: %v\n", err)
		return 1
	}
	if !utf8.Valid(msg) {
		fmt.Fprintf(errOut, "could not decode the file: %v\n", pngme.ErrInvalidEncoding)
		return 1
	}

	_, _ = fmt.Fprintln(out, string(msg))
	return 0
}

func cmdRemove(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var output string
	var configPath string
	fs.StringVar(&output, "out", "", "Output file (default: overwrite input)")
	fs.StringVar(&configPath, "config", "", "JSON config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(errOut, "usage: pngme remove [--out <file>] <file> <chunk-type>")
		return 2
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return 2
	}

	opts := &pngme.WriteOptions{Output: output, Read: cfg.ReadOptions()}
	c, err := pngme.RemoveFile(ctx, fs.Arg(0), fs.Arg(1), opts)
	if err != nil {
		fmt.Fprintf(errOut, "could not remove the chunk: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintln(out, c)
	return 0
}

func cmdPrint(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("print", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var verbose bool
	var configPath string
	fs.BoolVar(&verbose, "v", false, "Also print CID, chunk flags and payload digests")
	fs.StringVar(&configPath, "config", "", "JSON config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: pngme print [-v] <file|url>")
		return 2
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(errOut, "load config: %v\n", err)
		return 2
	}

	p, err := pngme.Open(ctx, fs.Arg(0), cfg.ReadOptions())
	if err != nil {
		fmt.Fprintf(errOut, "could not print the file chunks: %v\n", err)
		return 1
	}

	if !verbose {
		_, _ = fmt.Fprint(out, p)
		return 0
	}

	id, err := p.CID()
	if err != nil {
		fmt.Fprintf(errOut, "compute cid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(out, "cid: %s\n", id)
	_, _ = fmt.Fprintf(out, "chunks: %d\n", p.Len())
	_, _ = fmt.Fprint(out, p)
	for i, c := range p.Chunks() {
		_, _ = fmt.Fprintf(out, "%3d %s %-40s xxh64=%016x\n", i, c.Type(), c.Type().Flags(), c.Digest())
	}
	return 0
}
