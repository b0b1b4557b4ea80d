// Package fragment splits oversized messages into bounded payloads before
// framing and reassembles them on the receive side.
package fragment

// ShouldFragment reports whether msg is too large for a single frame.
// Anything up to twice the fragment size still travels as one frame.
func ShouldFragment(msg []byte, fragmentSize int) bool {
	return fragmentSize > 0 && len(msg) > fragmentSize*2
}

// Split chops msg into fragmentSize-byte payloads with stable ascending
// ids. An empty message still yields one empty payload.
func Split(msg []byte, fragmentSize int) [][]byte {
	if fragmentSize <= 0 || len(msg) <= fragmentSize {
		return [][]byte{msg}
	}
	total := (len(msg) + fragmentSize - 1) / fragmentSize
	out := make([][]byte, 0, total)
	for start := 0; start < len(msg); start += fragmentSize {
		end := start + fragmentSize
		if end > len(msg) {
			end = len(msg)
		}
		out = append(out, msg[start:end])
	}
	return out
}
