package crc

import "testing"

func TestChecksumKnownVector(t *testing.T) {
	// CRC-16 with poly 0x8005, init 0xFFFF, no reflection, no final XOR
	// over the standard check string.
	got := Checksum([]byte("123456789"), Poly)
	if got != 0xAEE7 {
		t.Fatalf("checksum mismatch: got=0x%04X want=0xAEE7", got)
	}
}

func TestChecksumDeterministic(t *testing.T) {
	data := []byte("the quick brown fox")
	a := Checksum(data, Poly)
	b := Checksum(data, Poly)
	if a != b {
		t.Fatalf("checksum not deterministic: 0x%04X vs 0x%04X", a, b)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x00},
		{0xFF},
		[]byte("Hello world!"),
		make([]byte, 1024),
	}
	for _, data := range cases {
		sum := Checksum(data, Poly)
		if !Verify(data, sum) {
			t.Fatalf("verify failed for %d-byte input", len(data))
		}
	}
}

func TestVerifyDetectsSingleBitFlips(t *testing.T) {
	data := []byte("frame body under test")
	sum := Checksum(data, Poly)
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := make([]byte, len(data))
			copy(flipped, data)
			flipped[i] ^= 1 << bit
			if Verify(flipped, sum) {
				t.Fatalf("single-bit flip at byte %d bit %d went undetected", i, bit)
			}
		}
	}
}

func TestChecksumDependsOnPolynomial(t *testing.T) {
	data := []byte("polynomial matters")
	if Checksum(data, Poly) == Checksum(data, 0x1021) {
		t.Fatalf("different polynomials produced the same checksum")
	}
}
