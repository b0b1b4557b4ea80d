package channel

import (
	"net"
	"time"
)

// pipeAddr is the notional address of one pipe end.
type pipeAddr string

func (a pipeAddr) Network() string { return "pipe" }
func (a pipeAddr) String() string  { return string(a) }

// Pipe returns two linked in-memory channels for tests and in-process
// evaluation. Queues are bounded; a send into a full queue drops the
// datagram, the way a saturated socket buffer would.
func Pipe() (Channel, Channel) {
	ab := make(chan []byte, 256)
	ba := make(chan []byte, 256)
	a := &pipeEnd{self: "pipe-a", peer: "pipe-b", in: ba, out: ab}
	b := &pipeEnd{self: "pipe-b", peer: "pipe-a", in: ab, out: ba}
	return a, b
}

type pipeEnd struct {
	self string
	peer string
	in   <-chan []byte
	out  chan<- []byte
}

func (p *pipeEnd) Send(b []byte, _ net.Addr) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case p.out <- cp:
	default:
		// queue full, datagram dropped
	}
	return nil
}

func (p *pipeEnd) Recv(timeout time.Duration) ([]byte, net.Addr, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case data := <-p.in:
		return data, pipeAddr(p.peer), nil
	case <-t.C:
		return nil, nil, ErrTimeout
	}
}

func (p *pipeEnd) Close() error {
	return nil
}
