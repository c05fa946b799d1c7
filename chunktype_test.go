package pngme

import (
	"errors"
	"testing"
)

func TestChunkTypeFromBytes(t *testing.T) {
	want := [4]byte{82, 117, 83, 116}

	got, err := ChunkTypeFromBytes(want)
	if err != nil {
		t.Fatalf("ChunkTypeFromBytes: %v", err)
	}
	if got.Bytes() != want {
		t.Fatalf("Bytes() = %v, want %v", got.Bytes(), want)
	}

	parsed, err := ParseChunkType("RuSt")
	if err != nil {
		t.Fatalf("ParseChunkType: %v", err)
	}
	if parsed != got {
		t.Fatalf("ParseChunkType(RuSt) = %v, want %v", parsed, got)
	}
	if parsed.String() != "RuSt" {
		t.Fatalf("String() = %q, want RuSt", parsed.String())
	}
}

func TestChunkTypePropertiesTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code      string
		critical  bool
		public    bool
		reserved  bool
		safeCopy  bool
		flagsText string
	}{
		{code: "RuSt", critical: true, public: false, reserved: true, safeCopy: true, flagsText: "critical,private,safe-to-copy"},
		{code: "ruSt", critical: false, public: false, reserved: true, safeCopy: true, flagsText: "ancillary,private,safe-to-copy"},
		{code: "RUSt", critical: true, public: true, reserved: true, safeCopy: true, flagsText: "critical,public,safe-to-copy"},
		{code: "Rust", critical: true, public: false, reserved: false, safeCopy: true, flagsText: "critical,private,reserved-set,safe-to-copy"},
		{code: "RuST", critical: true, public: false, reserved: true, safeCopy: false, flagsText: "critical,private,unsafe-to-copy"},
		{code: "IEND", critical: true, public: true, reserved: true, safeCopy: false, flagsText: "critical,public,unsafe-to-copy"},
		{code: "tEXt", critical: false, public: true, reserved: true, safeCopy: true, flagsText: "ancillary,public,safe-to-copy"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.code, func(t *testing.T) {
			t.Parallel()

			ct, err := ParseChunkType(tc.code)
			if err != nil {
				t.Fatalf("ParseChunkType: %v", err)
			}
			if ct.IsCritical() != tc.critical {
				t.Fatalf("IsCritical() = %v, want %v", ct.IsCritical(), tc.critical)
			}
			if ct.IsPublic() != tc.public {
				t.Fatalf("IsPublic() = %v, want %v", ct.IsPublic(), tc.public)
			}
			if ct.IsReservedBitValid() != tc.reserved {
				t.Fatalf("IsReservedBitValid() = %v, want %v", ct.IsReservedBitValid(), tc.reserved)
			}
			if ct.IsValid() != tc.reserved {
				t.Fatalf("IsValid() = %v, want %v", ct.IsValid(), tc.reserved)
			}
			if ct.IsSafeToCopy() != tc.safeCopy {
				t.Fatalf("IsSafeToCopy() = %v, want %v", ct.IsSafeToCopy(), tc.safeCopy)
			}
			if ct.Flags() != tc.flagsText {
				t.Fatalf("Flags() = %q, want %q", ct.Flags(), tc.flagsText)
			}
		})
	}
}

func TestChunkTypeAcceptsAllLetters(t *testing.T) {
	t.Parallel()

	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	if len(letters) != 52 {
		t.Fatalf("letter set has %d entries", len(letters))
	}

	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if _, err := ChunkTypeFromBytes([4]byte{c, c, c, c}); err != nil {
			t.Fatalf("ChunkTypeFromBytes(%q x4): %v", c, err)
		}
		mixed := [4]byte{c, letters[(i+13)%52], letters[(i+26)%52], letters[(i+39)%52]}
		if _, err := ChunkTypeFromBytes(mixed); err != nil {
			t.Fatalf("ChunkTypeFromBytes(%q): %v", mixed[:], err)
		}
	}
}

func TestChunkTypeRejectsNonLetters(t *testing.T) {
	t.Parallel()

	for v := 0; v < 256; v++ {
		b := byte(v)
		if isLetter(b) {
			continue
		}
		for pos := 0; pos < 4; pos++ {
			code := [4]byte{'R', 'u', 'S', 't'}
			code[pos] = b
			_, err := ChunkTypeFromBytes(code)
			if !errors.Is(err, ErrInvalidTypeCode) {
				t.Fatalf("byte 0x%02x at %d: expected ErrInvalidTypeCode, got %v", b, pos, err)
			}
		}
	}
}

func TestParseChunkTypeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "digit", in: "Ru1t", wantErr: ErrInvalidTypeCode},
		{name: "space", in: "Ru t", wantErr: ErrInvalidTypeCode},
		{name: "multibyte-rune", in: "Rué", wantErr: ErrInvalidTypeCode},
		{name: "short", in: "RuS", wantErr: ErrInvalidLength},
		{name: "long", in: "RuStt", wantErr: ErrInvalidLength},
		{name: "empty", in: "", wantErr: ErrInvalidLength},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseChunkType(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}
		})
	}
}
