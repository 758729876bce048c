// Package format implements reading and writing of ROF logs. The Decoder
// validates the fixed header, derives the channel layout from the file size
// and yields records lazily in file order.
package format

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// TagDecoder strips the NUL padding the instrument writes after the magic.
var TagDecoder transform.Transformer = runes.Remove(runes.Predicate(isNullByte))

func isNullByte(r rune) bool {
	return r == 0
}

// decodeTag returns the printable part of the raw tag field.
func decodeTag(raw []byte) string {
	s, _, err := transform.Bytes(TagDecoder, raw)
	if err != nil {
		return string(raw)
	}
	return string(s)
}
