// Package crc implements the CRC-16 integrity check carried in the wire
// frame trailer.
package crc

// Poly is the protocol polynomial. Both peers must use the same value or no
// frame will ever verify.
const Poly uint16 = 0x8005

// Checksum computes a bit-serial CRC-16 over data, left to right.
// Register starts at 0xFFFF; no reflection, no final XOR.
func Checksum(data []byte, poly uint16) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Verify recomputes the checksum over data with the protocol polynomial and
// compares it to the claimed value.
func Verify(data []byte, sum uint16) bool {
	return Checksum(data, Poly) == sum
}
