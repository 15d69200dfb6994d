package base32

import "strings"

// Alphabet is the RFC 4648 Base32 alphabet used by authenticator apps.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// decodeMap maps an upper-case symbol to its 5-bit value, 0xFF for symbols outside the alphabet.
var decodeMap = func() [256]byte {
	var m [256]byte
	for i := range m {
		m[i] = 0xFF
	}
	for i := 0; i < len(Alphabet); i++ {
		m[Alphabet[i]] = byte(i)
	}
	return m
}()

// Encode packs src into Base32 symbols, 5 bits per symbol, most significant bit first.
// No padding is emitted. Empty input yields an empty string.
func Encode(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow((len(src)*8 + 4) / 5)

	var buffer uint32
	bits := 0
	for _, b := range src {
		buffer = buffer<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			sb.WriteByte(Alphabet[(buffer>>uint(bits))&0x1F])
		}
	}
	// Remaining bits are left-aligned into a final symbol.
	if bits > 0 {
		sb.WriteByte(Alphabet[(buffer<<uint(5-bits))&0x1F])
	}

	return sb.String()
}

// Decode converts Base32 text back to bytes.
// Decoding is lenient: input is case-insensitive, spaces and hyphens are stripped,
// and any symbol outside the alphabet (including '=' padding) is skipped.
// Bits that do not complete a byte are dropped. Empty or fully invalid input
// yields an empty, non-nil slice.
func Decode(s string) []byte {
	out := make([]byte, 0, len(s)*5/8)

	var buffer uint32
	bits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		v := decodeMap[c]
		if v == 0xFF {
			continue
		}
		buffer = buffer<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>uint(bits)))
		}
	}

	return out
}

// Normalize returns s upper-cased with whitespace, hyphens and padding removed.
// It is useful when displaying or comparing human-entered secrets.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x80 {
			c := byte(r)
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			if decodeMap[c] != 0xFF {
				return rune(c)
			}
		}
		return -1
	}, s)
}
