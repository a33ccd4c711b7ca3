package field

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DAT files are single-byte ISO-8859-1 text. Column offsets are byte offsets,
// so lines are sliced before decoding and re-encoded before padding.
var latin1 = charmap.ISO8859_1

// Decode converts ISO-8859-1 bytes to a Go string.
func Decode(b []byte) string {
	out, err := latin1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// Encode converts a Go string to ISO-8859-1, replacing characters the
// encoding cannot represent.
func Encode(s string) []byte {
	out, err := encoding.ReplaceUnsupported(latin1.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
