package parser

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of the input data, strips any BOM,
// and returns the decoded UTF-8 bytes along with the detected encoding name.
// Non-UTF-8 input without a BOM falls back to Latin-1.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	if bytes.HasPrefix(data, bomUTF8) {
		return data[3:], "utf-8-bom", nil
	}

	if bytes.HasPrefix(data, bomUTF16LE) {
		decoded, err := decodeUTF16(data[2:], binary.LittleEndian)
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 LE decode failed: %w", err)
		}
		return decoded, "utf-16le", nil
	}

	if bytes.HasPrefix(data, bomUTF16BE) {
		decoded, err := decodeUTF16(data[2:], binary.BigEndian)
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 BE decode failed: %w", err)
		}
		return decoded, "utf-16be", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	// Latin-1 maps bytes 0x00-0xFF directly to code points U+0000-U+00FF
	return decodeLatin1(data), "latin-1", nil
}

func decodeLatin1(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(data) * 2)
	for _, b := range data {
		if b < 0x80 {
			buf.WriteByte(b)
		} else {
			buf.WriteRune(rune(b))
		}
	}
	return buf.Bytes()
}

func decodeUTF16(data []byte, order binary.ByteOrder) ([]byte, error) {
	if len(data)%2 != 0 {
		// Drop the trailing odd byte
		data = data[:len(data)-1]
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for i := 0; i < len(data); i += 2 {
		codeUnit := order.Uint16(data[i : i+2])

		if codeUnit >= 0xD800 && codeUnit <= 0xDBFF {
			// High surrogate, needs a low surrogate to form a code point
			if i+3 < len(data) {
				lowUnit := order.Uint16(data[i+2 : i+4])
				if lowUnit >= 0xDC00 && lowUnit <= 0xDFFF {
					codePoint := 0x10000 + (rune(codeUnit-0xD800)<<10 | rune(lowUnit-0xDC00))
					buf.WriteRune(codePoint)
					i += 2
					continue
				}
			}
			buf.WriteRune(0xFFFD)
			continue
		}

		if codeUnit >= 0xDC00 && codeUnit <= 0xDFFF {
			// Lone low surrogate
			buf.WriteRune(0xFFFD)
			continue
		}

		buf.WriteRune(rune(codeUnit))
	}

	return buf.Bytes(), nil
}
