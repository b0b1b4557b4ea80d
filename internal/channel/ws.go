package channel

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSChannel carries datagrams as binary websocket messages, for links where
// UDP is blocked. A reader goroutine pumps inbound messages into a bounded
// inbox; when the inbox is full new datagrams are dropped, matching the
// lossy-link contract.
type WSChannel struct {
	conn  *websocket.Conn
	wmu   sync.Mutex
	inbox chan []byte
	done  chan struct{}

	closeOnce sync.Once
}

// DialWS connects to a websocket endpoint and wraps it as a Channel.
func DialWS(ctx context.Context, url string) (*WSChannel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return newWSChannel(conn), nil
}

// AcceptWS upgrades an inbound HTTP request and wraps the connection as a
// Channel. One upgrade per link; this is a point-to-point transport.
func AcceptWS(w http.ResponseWriter, r *http.Request) (*WSChannel, error) {
	up := websocket.Upgrader{
		ReadBufferSize:  maxDatagram,
		WriteBufferSize: maxDatagram,
	}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newWSChannel(conn), nil
}

func newWSChannel(conn *websocket.Conn) *WSChannel {
	c := &WSChannel{
		conn:  conn,
		inbox: make(chan []byte, 256),
		done:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *WSChannel) readLoop() {
	defer close(c.done)
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		select {
		case c.inbox <- data:
		default:
			// inbox full, datagram dropped
		}
	}
}

func (c *WSChannel) Send(b []byte, _ net.Addr) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, b)
}

func (c *WSChannel) Recv(timeout time.Duration) ([]byte, net.Addr, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case data := <-c.inbox:
		return data, c.conn.RemoteAddr(), nil
	case <-t.C:
		return nil, nil, ErrTimeout
	case <-c.done:
		return nil, nil, net.ErrClosed
	}
}

func (c *WSChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr returns the peer address of the underlying connection.
func (c *WSChannel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
