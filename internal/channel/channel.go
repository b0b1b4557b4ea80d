// Package channel provides the datagram links the ARQ engine runs over:
// UDP, websocket-bridged, an in-memory pipe for tests, and a lossy wrapper
// for fault injection. Delivery and ordering are never guaranteed; that is
// the engine's problem.
package channel

import (
	"errors"
	"net"
	"time"
)

// ErrTimeout reports that no datagram arrived within the receive window.
// It is a transient condition, not a link failure.
var ErrTimeout = errors.New("channel: receive timeout")

// Channel is an unreliable datagram link. Send queues one datagram toward
// dest and returns without waiting for delivery. Recv blocks for at most
// the given timeout.
type Channel interface {
	Send(b []byte, dest net.Addr) error
	Recv(timeout time.Duration) ([]byte, net.Addr, error)
	Close() error
}
