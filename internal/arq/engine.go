// Package arq drives reliable delivery over an unreliable datagram channel:
// 1-bit sequence numbering, per-fragment acknowledgments, timeout-driven
// retransmission, and duplicate suppression. The engine handles at most one
// outstanding logical message per direction; there is no send window.
package arq

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/linkctl/internal/channel"
	"github.com/danmuck/linkctl/internal/fragment"
	"github.com/danmuck/linkctl/internal/observability"
	"github.com/danmuck/linkctl/internal/protocol"
)

// Handler receives each newly delivered message exactly once.
type Handler func(msg []byte, from net.Addr)

// Engine runs the sender and receiver paths of the protocol over one
// channel handle. The sender path lives in Send; the receiver path is the
// Run loop. They share the pending outbox and the sequence state.
type Engine struct {
	ch  channel.Channel
	cfg Config
	log zerolog.Logger

	mu        sync.Mutex
	rng       *rand.Rand
	sendSeq   uint8
	expectSeq uint8
	inflight  *outbox

	// ackProgress wakes the sender when the receiver path applies an
	// acknowledgment. Buffered so the receiver never blocks on it.
	ackProgress chan struct{}

	assembler *fragment.Assembler
	handler   Handler
	stats     counters
}

func NewEngine(ch channel.Channel, cfg Config, handler Handler) *Engine {
	return &Engine{
		ch:          ch,
		cfg:         cfg,
		log:         log.With().Str("component", "arq").Logger(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		ackProgress: make(chan struct{}, 1),
		assembler:   fragment.NewAssembler(),
		handler:     handler,
	}
}

// Snapshot returns current engine counters.
func (e *Engine) Snapshot() Stats {
	return e.stats.snapshot()
}

// Send delivers msg to dest, blocking until every fragment is acknowledged
// or the retry ceiling is reached. Corrupted frames on the wire are never
// reported back; the only recovery path is the ack timeout driving
// retransmission rounds here.
func (e *Engine) Send(ctx context.Context, msg []byte, dest net.Addr) error {
	payloads := [][]byte{msg}
	if fragment.ShouldFragment(msg, e.cfg.FragmentSize) {
		payloads = fragment.Split(msg, e.cfg.FragmentSize)
	}
	total := len(payloads)
	if total > 255 {
		return ErrMessageTooLarge
	}

	e.mu.Lock()
	if e.inflight != nil {
		e.mu.Unlock()
		return ErrSendInFlight
	}
	seq := e.sendSeq
	ob := newOutbox(seq, total)
	e.inflight = ob
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inflight = nil
		e.mu.Unlock()
	}()

	frames := make([][]byte, total)
	for i, p := range payloads {
		frames[i] = protocol.Encode(protocol.Frame{
			Seq:       seq,
			FragID:    uint8(i),
			FragTotal: uint8(total),
			Payload:   p,
		})
	}
	e.log.Debug().Uint8("seq", seq).Int("fragments", total).Int("bytes", len(msg)).Msg("send started")

	for round := 1; ; round++ {
		for _, frag := range ob.Pending() {
			if frag.Attempts >= e.cfg.MaxRetry {
				continue
			}
			if err := e.ch.Send(frames[frag.FragID], dest); err != nil {
				e.stats.messagesFailed.Add(1)
				observability.RecordMessage("failed")
				return fmt.Errorf("arq: transmit fragment %d: %w", frag.FragID, err)
			}
			e.stats.framesSent.Add(1)
			observability.RecordFrameTx()
			if frag.Attempts > 0 {
				e.stats.retransmissions.Add(1)
				observability.RecordRetransmission()
			}
			item, _ := ob.MarkAttempt(frag.FragID, time.Now())
			e.log.Debug().
				Uint8("seq", seq).
				Uint8("frag", frag.FragID).
				Int("attempt", item.Attempts).
				Msg("fragment sent")
		}

		if err := e.awaitAcks(ctx, ob); err != nil {
			e.stats.messagesFailed.Add(1)
			observability.RecordMessage("failed")
			return err
		}
		if ob.Empty() {
			break
		}
		if fragID, ok := ob.Exhausted(e.cfg.MaxRetry); ok {
			e.log.Warn().
				Uint8("seq", seq).
				Uint8("frag", fragID).
				Int("max_retry", e.cfg.MaxRetry).
				Msg("retry ceiling reached")
			e.stats.messagesFailed.Add(1)
			observability.RecordMessage("failed")
			return ErrRetryExhausted
		}
		e.log.Debug().Uint8("seq", seq).Int("round", round).Msg("ack timeout, retransmitting")

		if d := NextBackoffDelay(e.cfg.Backoff, round, e.rng); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				e.stats.messagesFailed.Add(1)
				observability.RecordMessage("failed")
				return ctx.Err()
			}
		}
	}

	e.mu.Lock()
	e.sendSeq ^= 1
	e.mu.Unlock()
	e.stats.messagesSent.Add(1)
	observability.RecordMessage("success")
	e.log.Debug().Uint8("seq", seq).Msg("message acknowledged")
	return nil
}

// awaitAcks blocks until the outbox drains or the ack timeout elapses.
// A nil return with a non-empty outbox means the round timed out.
func (e *Engine) awaitAcks(ctx context.Context, ob *outbox) error {
	deadline := time.NewTimer(e.cfg.AckTimeout)
	defer deadline.Stop()
	for {
		if ob.Empty() {
			return nil
		}
		select {
		case <-e.ackProgress:
		case <-deadline.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Run is the receiver path: a long-lived loop that decodes inbound frames,
// applies acknowledgments, acks and reassembles data frames, and delivers
// new messages to the handler. It returns nil once ctx is cancelled or the
// channel is closed.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		data, src, err := e.ch.Recv(e.cfg.PollTimeout)
		if err != nil {
			if errors.Is(err, channel.ErrTimeout) {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("arq: channel receive: %w", err)
		}
		e.stats.framesReceived.Add(1)
		observability.RecordFrameRx()

		f, err := protocol.Decode(data)
		if err != nil {
			// Dropped silently on the wire; the sender's timeout is the
			// recovery path. No NACK exists.
			reason := "malformed"
			if errors.Is(err, protocol.ErrIntegrity) {
				reason = "integrity"
			}
			e.stats.frameErrors.Add(1)
			observability.RecordFrameError(reason)
			e.log.Debug().Err(err).Int("len", len(data)).Msg("frame dropped")
			continue
		}
		if f.Corrected > 0 {
			e.stats.correctedCodewords.Add(uint64(f.Corrected))
			observability.RecordFECCorrections(f.Corrected)
		}

		if f.IsAck() {
			e.handleAck(f)
			continue
		}
		e.handleData(f, src)
	}
}

func (e *Engine) handleAck(f protocol.Frame) {
	e.mu.Lock()
	ob := e.inflight
	e.mu.Unlock()
	if ob == nil || !ob.Ack(f.Seq, f.FragID) {
		e.log.Debug().Uint8("seq", f.Seq).Uint8("frag", f.FragID).Msg("stale ack ignored")
		return
	}
	e.log.Debug().Uint8("seq", f.Seq).Uint8("frag", f.FragID).Msg("fragment acknowledged")
	select {
	case e.ackProgress <- struct{}{}:
	default:
	}
}

func (e *Engine) handleData(f protocol.Frame, src net.Addr) {
	// Ack first, duplicates included: the peer may have missed the prior
	// acknowledgment and is blocked retransmitting.
	ack := protocol.Encode(protocol.NewAck(f.Seq, f.FragID, f.FragTotal))
	if err := e.ch.Send(ack, src); err != nil {
		e.log.Warn().Err(err).Msg("ack transmit failed")
	} else {
		e.stats.framesSent.Add(1)
		observability.RecordFrameTx()
	}

	msg := f.Payload
	if f.FragTotal > 1 {
		key := fragment.Key{Peer: src.String(), Seq: f.Seq}
		complete, done := e.assembler.Accept(key, f.FragID, f.FragTotal, f.Payload)
		if !done {
			return
		}
		msg = complete
	}

	e.mu.Lock()
	dup := f.Seq != e.expectSeq
	if !dup {
		e.expectSeq ^= 1
	}
	e.mu.Unlock()

	if dup {
		e.stats.duplicates.Add(1)
		observability.RecordDuplicate()
		e.log.Debug().Uint8("seq", f.Seq).Msg("duplicate message suppressed")
		return
	}

	e.stats.messagesDelivered.Add(1)
	e.log.Debug().Uint8("seq", f.Seq).Int("bytes", len(msg)).Msg("message delivered")
	if e.handler != nil {
		e.handler(msg, src)
	}
}
