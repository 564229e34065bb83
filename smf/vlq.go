// Package smf implements the Standard MIDI File codec of spec.md §6.5:
// MThd/MTrk chunk framing, variable-length delta times, a meta-event
// catalogue, and tempo-driven end-time computation. The meta event type
// byte table is grounded on williamsharkey/midi's messages/meta package.
package smf

// encodeVLQ encodes v as a MIDI variable-length quantity: 7 bits per
// byte, most significant byte first, every byte but the last with its
// high bit set.
func encodeVLQ(v uint32) []byte {
	buf := []byte{byte(v & 0x7F)}
	v >>= 7
	for v > 0 {
		buf = append([]byte{byte(v&0x7F) | 0x80}, buf...)
		v >>= 7
	}
	return buf
}

// decodeVLQ reads a variable-length quantity from the front of b,
// returning the value and the number of bytes consumed. ok is false if b
// runs out before a byte with the high bit clear is seen.
func decodeVLQ(b []byte) (value uint32, n int, ok bool) {
	for n < len(b) && n < 5 {
		c := b[n]
		value = (value << 7) | uint32(c&0x7F)
		n++
		if c&0x80 == 0 {
			return value, n, true
		}
	}
	return 0, 0, false
}
