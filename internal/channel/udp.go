package channel

import (
	"errors"
	"net"
	"time"
)

const maxDatagram = 64 * 1024

// UDPChannel adapts a bound UDP socket to the Channel interface.
type UDPChannel struct {
	conn *net.UDPConn
}

// ListenUDP binds a UDP socket on the given address.
func ListenUDP(listen string) (*UDPChannel, error) {
	addr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}
	return &UDPChannel{conn: conn}, nil
}

func (u *UDPChannel) Send(b []byte, dest net.Addr) error {
	_, err := u.conn.WriteTo(b, dest)
	return err
}

func (u *UDPChannel) Recv(timeout time.Duration) ([]byte, net.Addr, error) {
	if err := u.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, nil, err
	}
	buf := make([]byte, maxDatagram)
	n, src, err := u.conn.ReadFrom(buf)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, nil, ErrTimeout
		}
		return nil, nil, err
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, src, nil
}

func (u *UDPChannel) Close() error {
	return u.conn.Close()
}

// LocalAddr returns the bound address, useful when listening on :0.
func (u *UDPChannel) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}
