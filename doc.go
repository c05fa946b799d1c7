/*
Package pngme hides, extracts and removes messages in PNG files by editing
the chunk sequence of the container.

A PNG file is an 8-byte signature followed by chunks. Each chunk is framed
as a big-endian length, a 4-letter type code, the payload and a CRC-32 over
type and payload. The package parses that framing byte-exactly, lets the
caller append, look up and remove chunks, and renders the container back to
bytes. Pixel data is never decoded.

Messages may be stored verbatim or inside a small envelope compressed with
LZ4 or zstd; see EncodeMessage and DecodeMessage.
*/
package pngme
