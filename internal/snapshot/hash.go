package snapshot

import (
	"fmt"
	"unicode/utf16"
)

// Hash returns the 32-bit rolling fingerprint of s as 8 lowercase hex
// digits. It iterates UTF-16 code units so fingerprints match those
// recorded by the JavaScript build scripts. It is a change detector,
// not an integrity check.
func Hash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return fmt.Sprintf("%08x", uint32(h))
}

func hashPtr(s string) *string {
	h := Hash(s)
	return &h
}
