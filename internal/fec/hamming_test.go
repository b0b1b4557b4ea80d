package fec

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{0x00},
		{0xFF},
		{0xA5, 0x5A},
		[]byte("Hello world!"),
		bytes.Repeat([]byte{0xDE, 0xAD, 0xBE, 0xEF}, 64),
	}
	for _, data := range cases {
		coded := Encode(data)
		if len(coded) != EncodedLen(len(data)) {
			t.Fatalf("coded length: got=%d want=%d", len(coded), EncodedLen(len(data)))
		}
		decoded, corrected := Decode(coded)
		if corrected != 0 {
			t.Fatalf("clean stream reported %d corrections", corrected)
		}
		if !bytes.Equal(decoded, data) {
			t.Fatalf("round trip mismatch for %d-byte input", len(data))
		}
	}
}

func TestSingleBitCorrectionExhaustive(t *testing.T) {
	// Every nibble, every flip position in the low seven bits.
	for nibble := byte(0); nibble < 16; nibble++ {
		cw := encodeNibble(nibble)
		for pos := uint(0); pos < 7; pos++ {
			flipped := cw ^ 1<<pos
			got, fixed := decodeCodeword(flipped)
			if !fixed {
				t.Fatalf("nibble %X flip bit %d: correction not reported", nibble, pos)
			}
			if got != nibble {
				t.Fatalf("nibble %X flip bit %d: decoded %X", nibble, pos, got)
			}
		}
	}
}

func TestCleanCodewordNotCorrected(t *testing.T) {
	for nibble := byte(0); nibble < 16; nibble++ {
		got, fixed := decodeCodeword(encodeNibble(nibble))
		if fixed {
			t.Fatalf("nibble %X: spurious correction", nibble)
		}
		if got != nibble {
			t.Fatalf("nibble %X: decoded %X", nibble, got)
		}
	}
}

func TestDecodeCodewordStrict(t *testing.T) {
	cw := encodeNibble(0xB)
	nibble, fixed, err := DecodeCodeword(cw)
	if err != nil || fixed || nibble != 0xB {
		t.Fatalf("clean codeword: nibble=%X fixed=%v err=%v", nibble, fixed, err)
	}
	if _, _, err := DecodeCodeword(cw | 0x80); !errors.Is(err, ErrCodewordRange) {
		t.Fatalf("expected ErrCodewordRange, got %v", err)
	}
}

func TestDecodeCountsCorrections(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56}
	coded := Encode(data)
	coded[0] ^= 1 << 2
	coded[3] ^= 1 << 5
	decoded, corrected := Decode(coded)
	if corrected != 2 {
		t.Fatalf("corrected count: got=%d want=2", corrected)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatalf("corrected stream mismatch: %X", decoded)
	}
}
