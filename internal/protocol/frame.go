// Package protocol implements the wire frame: a fixed header, a
// FEC-expanded payload, and a trailer carrying the original payload length
// and a CRC-16 over everything before it.
//
// Layout, big-endian:
//
//	[seq:1][frag_id:1][frag_total:1][fec_payload:2*orig_len][orig_len:2][crc16:2]
package protocol

import (
	"bytes"
	"encoding/binary"

	"github.com/danmuck/linkctl/internal/crc"
	"github.com/danmuck/linkctl/internal/fec"
)

const (
	// HeaderLen covers seq, fragment id and fragment total.
	HeaderLen = 3
	// TrailerLen covers the original-length field and the CRC.
	TrailerLen = 4
	// MinFrameLen is the smallest parseable frame (empty payload).
	MinFrameLen = HeaderLen + TrailerLen
)

// ackPayload is the literal acknowledgment marker. ACK frames are framed
// identically to data frames, FEC and CRC included.
var ackPayload = []byte("ACK")

// Frame is one wire unit. Seq alternates 0/1 per logical message; FragID is
// the 0-based index within a fragmented message; FragTotal is 1 for
// unfragmented payloads.
type Frame struct {
	Seq       uint8
	FragID    uint8
	FragTotal uint8
	Payload   []byte

	// Corrected is set by Decode to the number of FEC codewords that were
	// repaired while recovering Payload. Encode ignores it.
	Corrected int
}

// NewAck builds an acknowledgment frame for one fragment of the given
// sequence number.
func NewAck(seq, fragID, fragTotal uint8) Frame {
	return Frame{Seq: seq, FragID: fragID, FragTotal: fragTotal, Payload: ackPayload}
}

// IsAck reports whether the frame carries the acknowledgment marker.
func (f Frame) IsAck() bool {
	return bytes.Equal(f.Payload, ackPayload)
}

// Encode serializes the frame. The CRC is computed over the exact byte
// sequence that precedes it, so verification on the far side reconstructs
// the same bytes.
func Encode(f Frame) []byte {
	coded := fec.Encode(f.Payload)
	buf := make([]byte, 0, HeaderLen+len(coded)+TrailerLen)
	buf = append(buf, f.Seq, f.FragID, f.FragTotal)
	buf = append(buf, coded...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(f.Payload)))
	sum := crc.Checksum(buf, crc.Poly)
	buf = binary.BigEndian.AppendUint16(buf, sum)
	return buf
}

// Decode parses and verifies one frame. Frames shorter than the fixed
// header+trailer are rejected before any field is touched; a CRC mismatch
// rejects the frame before the FEC region is decoded.
func Decode(b []byte) (Frame, error) {
	if len(b) < MinFrameLen {
		return Frame{}, ErrFrameTooShort
	}

	body := b[:len(b)-2]
	sum := binary.BigEndian.Uint16(b[len(b)-2:])
	if crc.Checksum(body, crc.Poly) != sum {
		return Frame{}, ErrIntegrity
	}

	origLen := binary.BigEndian.Uint16(body[len(body)-2:])
	coded := body[HeaderLen : len(body)-2]
	if len(coded) != fec.EncodedLen(int(origLen)) {
		return Frame{}, ErrLengthMismatch
	}

	payload, corrected := fec.Decode(coded)
	if len(payload) > int(origLen) {
		payload = payload[:origLen]
	}

	return Frame{
		Seq:       b[0],
		FragID:    b[1],
		FragTotal: b[2],
		Payload:   payload,
		Corrected: corrected,
	}, nil
}
