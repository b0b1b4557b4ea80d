package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/linkctl/internal/arq"
	"github.com/danmuck/linkctl/internal/auth"
	"github.com/danmuck/linkctl/internal/channel"
	"github.com/danmuck/linkctl/internal/testutil/testlog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() arq.Config {
	cfg := arq.DefaultConfig()
	cfg.FragmentSize = 16
	cfg.AckTimeout = 50 * time.Millisecond
	cfg.PollTimeout = 10 * time.Millisecond
	return cfg
}

func TestEndpointExchange(t *testing.T) {
	testlog.Start(t)
	chA, chB := channel.Pipe()
	a := Appear("node-a", chA, testConfig(), nil)
	b := Appear("node-b", chB, testConfig(), nil)

	delivered := make(chan []byte, 1)
	b.OnMessage(func(msg []byte, from net.Addr) {
		delivered <- msg
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	msg := []byte("endpoint to endpoint")
	if err := a.Send(context.Background(), msg, nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case got := <-delivered:
		if !bytes.Equal(got, msg) {
			t.Fatalf("delivered mismatch: %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("message never delivered")
	}

	if a.Stats().MessagesSent != 1 {
		t.Fatalf("sender stats not updated: %+v", a.Stats())
	}
	if b.Stats().MessagesDelivered != 1 {
		t.Fatalf("receiver stats not updated: %+v", b.Stats())
	}
}

func TestStatsRouteReportsCounters(t *testing.T) {
	testlog.Start(t)
	chA, chB := channel.Pipe()
	a := Appear("node-a", chA, testConfig(), nil)
	b := Appear("node-b", chB, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	if err := a.Send(context.Background(), []byte("counted"), nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rr := httptest.NewRecorder()
	a.HTTPRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var body struct {
		Endpoint string    `json:"endpoint"`
		Stats    arq.Stats `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Endpoint != "node-a" {
		t.Fatalf("unexpected endpoint name: %q", body.Endpoint)
	}
	if body.Stats.MessagesSent != 1 || body.Stats.FramesSent == 0 {
		t.Fatalf("unexpected stats payload: %+v", body.Stats)
	}
}

func TestStatsRouteHonorsAuth(t *testing.T) {
	testlog.Start(t)
	chA, _ := channel.Pipe()
	e := Appear("node-a", chA, testConfig(), nil)
	e.RequireAuth(auth.StaticToken{Token: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rr := httptest.NewRecorder()
	e.HTTPRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	e.HTTPRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 with token, got %d", rr.Code)
	}
}

func TestHealthAndReadyRoutes(t *testing.T) {
	testlog.Start(t)
	chA, _ := channel.Pipe()
	e := Appear("node-a", chA, testConfig(), nil)

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		e.HTTPRouter().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s: expected status 200, got %d", path, rr.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("GET %s: decode body: %v", path, err)
		}
		if body["endpoint"] != "node-a" {
			t.Fatalf("GET %s: unexpected body: %#v", path, body)
		}
	}
}
