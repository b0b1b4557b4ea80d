// Package fec implements the Hamming(7,4) forward error correction codec.
//
// Each 4-bit data group d0 d1 d2 d3 becomes a 7-bit codeword in position
// order p1 p2 d0 p3 d1 d2 d3, stored in the low seven bits of one byte.
// Decoding corrects any single flipped bit per codeword via syndrome
// lookup. A codeword carrying two or more flipped bits is mis-corrected
// silently; the frame-level CRC is the detection layer for that case.
package fec

import "errors"

// ErrCodewordRange reports a codeword byte with its top bit set.
var ErrCodewordRange = errors.New("fec: codeword out of 7-bit range")

// EncodedLen returns the coded size for n payload bytes: one codeword byte
// per nibble, high nibble first.
func EncodedLen(n int) int {
	return n * 2
}

// Encode expands data into Hamming(7,4) codewords, two per input byte.
func Encode(data []byte) []byte {
	out := make([]byte, 0, EncodedLen(len(data)))
	for _, b := range data {
		out = append(out, encodeNibble(b>>4), encodeNibble(b&0x0F))
	}
	return out
}

// Decode reverses Encode, correcting at most one flipped bit per codeword.
// It returns the decoded bytes and the number of codewords corrected.
func Decode(coded []byte) ([]byte, int) {
	out := make([]byte, 0, (len(coded)+1)/2)
	corrected := 0
	for i := 0; i < len(coded); i += 2 {
		hi, fixed := decodeCodeword(coded[i])
		if fixed {
			corrected++
		}
		var lo byte
		if i+1 < len(coded) {
			var fixedLo bool
			lo, fixedLo = decodeCodeword(coded[i+1])
			if fixedLo {
				corrected++
			}
		}
		out = append(out, hi<<4|lo)
	}
	return out, corrected
}

// DecodeCodeword decodes one codeword byte strictly, rejecting out-of-range
// input instead of masking it the way stream Decode does.
func DecodeCodeword(cw byte) (byte, bool, error) {
	if cw > 0x7F {
		return 0, false, ErrCodewordRange
	}
	nibble, fixed := decodeCodeword(cw)
	return nibble, fixed, nil
}

// encodeNibble maps a 4-bit group (d0 = most significant) to one codeword
// byte holding p1 p2 d0 p3 d1 d2 d3 in its low seven bits.
func encodeNibble(d byte) byte {
	d0 := d >> 3 & 1
	d1 := d >> 2 & 1
	d2 := d >> 1 & 1
	d3 := d & 1
	p1 := d0 ^ d1 ^ d3
	p2 := d0 ^ d2 ^ d3
	p3 := d1 ^ d2 ^ d3
	return p1<<6 | p2<<5 | d0<<4 | p3<<3 | d1<<2 | d2<<1 | d3
}

// decodeCodeword recovers the 4-bit group from one codeword byte. The
// syndrome (s3<<2)|(s2<<1)|s1 names the 1-based position of the flipped
// bit; zero means no error. Whatever position the syndrome indicates is
// flipped unconditionally.
func decodeCodeword(cw byte) (byte, bool) {
	cw &= 0x7F
	bit := func(pos uint) byte { return cw >> (7 - pos) & 1 }

	s1 := bit(1) ^ bit(3) ^ bit(5) ^ bit(7)
	s2 := bit(2) ^ bit(3) ^ bit(6) ^ bit(7)
	s3 := bit(4) ^ bit(5) ^ bit(6) ^ bit(7)
	pos := s3<<2 | s2<<1 | s1

	if pos != 0 {
		cw ^= 1 << (7 - pos)
	}
	nibble := bit(3)<<3 | bit(5)<<2 | bit(6)<<1 | bit(7)
	return nibble, pos != 0
}
