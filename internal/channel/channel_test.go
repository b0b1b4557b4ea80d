package channel

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPipeRoundTrip(t *testing.T) {
	a, b := Pipe()
	if err := a.Send([]byte("ping"), nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	data, src, err := b.Recv(time.Second)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(data) != "ping" {
		t.Fatalf("payload mismatch: %q", data)
	}
	if src.String() != "pipe-a" {
		t.Fatalf("unexpected source: %v", src)
	}
}

func TestPipeRecvTimeout(t *testing.T) {
	a, _ := Pipe()
	_, _, err := a.Recv(10 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestUDPChannelRoundTrip(t *testing.T) {
	a, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen a: %v", err)
	}
	defer a.Close()
	b, err := ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen b: %v", err)
	}
	defer b.Close()

	if err := a.Send([]byte("datagram"), b.LocalAddr()); err != nil {
		t.Fatalf("send: %v", err)
	}
	data, src, err := b.Recv(time.Second)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(data) != "datagram" {
		t.Fatalf("payload mismatch: %q", data)
	}
	if src.String() != a.LocalAddr().String() {
		t.Fatalf("source mismatch: %v vs %v", src, a.LocalAddr())
	}

	_, _, err = b.Recv(10 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestWSChannelRoundTrip(t *testing.T) {
	accepted := make(chan *WSChannel, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ch, err := AcceptWS(w, r)
		if err != nil {
			t.Errorf("accept: %v", err)
			return
		}
		accepted <- ch
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, err := DialWS(context.Background(), url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	server := <-accepted
	defer server.Close()

	if err := client.Send([]byte("over ws"), nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	data, _, err := server.Recv(time.Second)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if string(data) != "over ws" {
		t.Fatalf("payload mismatch: %q", data)
	}

	_, _, err = server.Recv(10 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestCorrupterReproducibleWithSeed(t *testing.T) {
	data := bytes.Repeat([]byte{0x5A}, 512)
	first := NewCorrupter(rand.New(rand.NewSource(42)), DefaultDropRate, DefaultFlipRate)(data)
	second := NewCorrupter(rand.New(rand.NewSource(42)), DefaultDropRate, DefaultFlipRate)(data)
	if !bytes.Equal(first, second) {
		t.Fatalf("same seed produced different corruption")
	}
	if bytes.Equal(first, data) {
		t.Fatalf("512 bytes at default rates should have been corrupted")
	}
}

func TestCorrupterZeroRatesPassThrough(t *testing.T) {
	data := []byte("untouched")
	out := NewCorrupter(rand.New(rand.NewSource(1)), 0, 0)(data)
	if !bytes.Equal(out, data) {
		t.Fatalf("zero-rate corrupter modified the datagram")
	}
}

func TestLossyWrapsSendOnly(t *testing.T) {
	a, b := Pipe()
	// Corrupter that stamps the first byte, so the path is observable.
	stamp := func(in []byte) []byte {
		out := make([]byte, len(in))
		copy(out, in)
		if len(out) > 0 {
			out[0] = 0xEE
		}
		return out
	}
	lossy := NewLossy(a, stamp)
	if err := lossy.Send([]byte{0x01, 0x02}, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	data, _, err := b.Recv(time.Second)
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if data[0] != 0xEE || data[1] != 0x02 {
		t.Fatalf("corrupter not applied on send path: %X", data)
	}

	if err := b.Send([]byte{0x09}, nil); err != nil {
		t.Fatalf("send back: %v", err)
	}
	back, _, err := lossy.Recv(time.Second)
	if err != nil {
		t.Fatalf("recv back: %v", err)
	}
	if back[0] != 0x09 {
		t.Fatalf("receive path should be untouched: %X", back)
	}
}
