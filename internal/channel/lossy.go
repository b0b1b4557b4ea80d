package channel

import (
	"math/rand"
	"net"
	"sync"
	"time"
)

// Fault model defaults, per byte of each outbound datagram.
const (
	DefaultDropRate = 0.01
	DefaultFlipRate = 0.05
)

// Corrupter mutates one outbound datagram. It must not modify the input
// slice.
type Corrupter func(b []byte) []byte

// NewCorrupter builds a byte-level fault injector: each byte is dropped
// with dropRate probability, otherwise a single random bit is flipped with
// flipRate probability. A seeded rng makes runs reproducible.
func NewCorrupter(rng *rand.Rand, dropRate, flipRate float64) Corrupter {
	var mu sync.Mutex
	return func(b []byte) []byte {
		mu.Lock()
		defer mu.Unlock()
		out := make([]byte, 0, len(b))
		for _, by := range b {
			switch {
			case rng.Float64() < dropRate:
				// byte lost
			case rng.Float64() < flipRate:
				out = append(out, by^(1<<rng.Intn(8)))
			default:
				out = append(out, by)
			}
		}
		return out
	}
}

// DefaultCorrupter builds a corrupter with the default fault model.
func DefaultCorrupter(rng *rand.Rand) Corrupter {
	return NewCorrupter(rng, DefaultDropRate, DefaultFlipRate)
}

// Lossy wraps a channel and runs every outbound datagram through a
// corrupter. The fault injection sits outside the protocol; receive and
// close pass straight through.
type Lossy struct {
	inner   Channel
	corrupt Corrupter
}

func NewLossy(inner Channel, corrupt Corrupter) *Lossy {
	return &Lossy{inner: inner, corrupt: corrupt}
}

func (l *Lossy) Send(b []byte, dest net.Addr) error {
	return l.inner.Send(l.corrupt(b), dest)
}

func (l *Lossy) Recv(timeout time.Duration) ([]byte, net.Addr, error) {
	return l.inner.Recv(timeout)
}

func (l *Lossy) Close() error {
	return l.inner.Close()
}
