package arq

import "sync/atomic"

// Stats is a point-in-time snapshot of engine counters, served by the
// stats API.
type Stats struct {
	FramesSent         uint64 `json:"frames_sent"`
	FramesReceived     uint64 `json:"frames_received"`
	FrameErrors        uint64 `json:"frame_errors"`
	Retransmissions    uint64 `json:"retransmissions"`
	MessagesSent       uint64 `json:"messages_sent"`
	MessagesFailed     uint64 `json:"messages_failed"`
	MessagesDelivered  uint64 `json:"messages_delivered"`
	Duplicates         uint64 `json:"duplicates"`
	CorrectedCodewords uint64 `json:"corrected_codewords"`
}

type counters struct {
	framesSent         atomic.Uint64
	framesReceived     atomic.Uint64
	frameErrors        atomic.Uint64
	retransmissions    atomic.Uint64
	messagesSent       atomic.Uint64
	messagesFailed     atomic.Uint64
	messagesDelivered  atomic.Uint64
	duplicates         atomic.Uint64
	correctedCodewords atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		FramesSent:         c.framesSent.Load(),
		FramesReceived:     c.framesReceived.Load(),
		FrameErrors:        c.frameErrors.Load(),
		Retransmissions:    c.retransmissions.Load(),
		MessagesSent:       c.messagesSent.Load(),
		MessagesFailed:     c.messagesFailed.Load(),
		MessagesDelivered:  c.messagesDelivered.Load(),
		Duplicates:         c.duplicates.Load(),
		CorrectedCodewords: c.correctedCodewords.Load(),
	}
}
