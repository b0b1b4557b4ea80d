// Package endpoint ties one channel, one delivery engine, and the local
// stats API together into a node a caller can run.
package endpoint

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/linkctl/internal/arq"
	"github.com/danmuck/linkctl/internal/auth"
	"github.com/danmuck/linkctl/internal/channel"
	"github.com/danmuck/linkctl/internal/node"
	"github.com/danmuck/linkctl/internal/observability"
)

// Handler receives each message delivered to this endpoint exactly once.
type Handler func(msg []byte, from net.Addr)

// Endpoint owns a channel handle and the reliable-delivery engine on top of
// it, plus an HTTP router exposing health, metrics, and transfer stats.
type Endpoint struct {
	Name     string
	Appeared time.Time

	ch     channel.Channel
	engine *arq.Engine
	router *gin.Engine

	mu      sync.RWMutex
	handler Handler
	authv   auth.Validator
}

var _ node.Node = (*Endpoint)(nil)

func Appear(name string, ch channel.Channel, cfg arq.Config, corsOrigins []string) *Endpoint {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	e := &Endpoint{
		Name:     name,
		Appeared: time.Now(),
		ch:       ch,
		router:   r,
	}
	e.engine = arq.NewEngine(ch, cfg, e.dispatch)
	e.RegisterRoutes()
	return e
}

// RequireAuth guards the stats route with the given validator. Health,
// readiness, and metrics stay open.
func (e *Endpoint) RequireAuth(v auth.Validator) {
	e.mu.Lock()
	e.authv = v
	e.mu.Unlock()
}

func (e *Endpoint) validateToken(token string) error {
	e.mu.RLock()
	v := e.authv
	e.mu.RUnlock()
	if v == nil {
		return nil
	}
	return v.Validate(token)
}

// OnMessage binds the delivery callback. Safe to call before or during Run.
func (e *Endpoint) OnMessage(h Handler) {
	e.mu.Lock()
	e.handler = h
	e.mu.Unlock()
}

// Send delivers msg to dest reliably, blocking until acknowledged or failed.
func (e *Endpoint) Send(ctx context.Context, msg []byte, dest net.Addr) error {
	return e.engine.Send(ctx, msg, dest)
}

// Run drives the receive loop until ctx is cancelled or the channel closes.
func (e *Endpoint) Run(ctx context.Context) error {
	log.Info().Str("endpoint", e.Name).Msg("endpoint running")
	return e.engine.Run(ctx)
}

// ServeStats blocks serving the HTTP stats API on addr.
func (e *Endpoint) ServeStats(addr string) error {
	log.Info().Str("endpoint", e.Name).Str("addr", addr).Msg("stats api listening")
	return e.router.Run(addr)
}

func (e *Endpoint) NodeID() string {
	return e.Name
}

func (e *Endpoint) Kind() string {
	return "endpoint"
}

func (e *Endpoint) HTTPRouter() *gin.Engine {
	return e.router
}

// Stats returns a snapshot of the engine counters.
func (e *Endpoint) Stats() arq.Stats {
	return e.engine.Snapshot()
}

func (e *Endpoint) Close() error {
	return e.ch.Close()
}

func (e *Endpoint) dispatch(msg []byte, from net.Addr) {
	e.mu.RLock()
	h := e.handler
	e.mu.RUnlock()
	if h != nil {
		h(msg, from)
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
