// Linkctl runs one endpoint of a reliable link over UDP: it listens for
// inbound messages, exposes the stats API, and sends messages typed at the
// prompt (or a single -send message) to the configured peer.
package main

import (
	"context"
	"flag"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/linkctl/internal/auth"
	"github.com/danmuck/linkctl/internal/channel"
	"github.com/danmuck/linkctl/internal/config"
	"github.com/danmuck/linkctl/internal/endpoint"
	"github.com/danmuck/linkctl/internal/observability"
)

var version = "0.0.1"

func main() {
	observability.InitLogger("linkctl")

	configPath := flag.String("config", "cmd/linkctl/config.toml", "path to link config")
	listen := flag.String("listen", "", "override listen address")
	peer := flag.String("peer", "", "override peer address")
	send := flag.String("send", "", "send one message and exit")
	flag.Parse()

	cfg, err := config.LoadLinkConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load link config")
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *peer != "" {
		cfg.Peer = *peer
	}
	log.Info().Str("path", *configPath).Str("name", cfg.Name).Msg("loaded link config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	udp, err := channel.ListenUDP(cfg.Listen)
	if err != nil {
		log.Fatal().Err(err).Str("listen", cfg.Listen).Msg("failed to bind udp socket")
	}
	var ch channel.Channel = udp
	if cfg.Loss.Enabled {
		rng := rand.New(rand.NewSource(cfg.Loss.Seed))
		ch = channel.NewLossy(udp, channel.NewCorrupter(rng, cfg.Loss.DropRate, cfg.Loss.FlipRate))
		log.Warn().
			Float64("drop_rate", cfg.Loss.DropRate).
			Float64("flip_rate", cfg.Loss.FlipRate).
			Msg("loss injection enabled on send path")
	}

	ep := endpoint.Appear(cfg.Name, ch, config.ARQConfig(cfg), cfg.CorsOrigins)
	defer ep.Close()
	if cfg.AuthToken != "" {
		ep.RequireAuth(auth.StaticToken{Token: cfg.AuthToken})
	}
	ep.OnMessage(func(msg []byte, from net.Addr) {
		pterm.Success.Printfln("[%s] %s", from, string(msg))
	})

	go func() {
		if err := ep.Run(ctx); err != nil {
			log.Error().Err(err).Msg("receive loop stopped")
		}
	}()
	go func() {
		if err := ep.ServeStats(cfg.StatsAddr); err != nil {
			log.Error().Err(err).Msg("stats api stopped")
		}
	}()

	var dest net.Addr
	if cfg.Peer != "" {
		dest, err = net.ResolveUDPAddr("udp", cfg.Peer)
		if err != nil {
			log.Fatal().Err(err).Str("peer", cfg.Peer).Msg("failed to resolve peer address")
		}
	}

	pterm.Info.Printfln("linkctl v%s — %s on %s", version, cfg.Name, udp.LocalAddr())

	if *send != "" {
		if dest == nil {
			log.Fatal().Msg("no peer configured for -send")
		}
		if err := ep.Send(ctx, []byte(*send), dest); err != nil {
			log.Fatal().Err(err).Msg("send failed")
		}
		pterm.Success.Println("message acknowledged")
		return
	}

	runPrompt(ctx, ep, dest)
	log.Info().Msg("linkctl shut down")
}

// runPrompt reads messages from the terminal until ctx is cancelled or the
// user quits. With no peer configured the endpoint just listens.
func runPrompt(ctx context.Context, ep *endpoint.Endpoint, dest net.Addr) {
	if dest == nil {
		pterm.Info.Println("no peer configured, listening only (Ctrl+C to exit)")
		<-ctx.Done()
		return
	}

	pterm.Info.Printfln("sending to %s (/quit to exit)", dest)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("message").
			Show()
		msg := strings.TrimSpace(raw)
		if msg == "" {
			continue
		}
		if msg == "/quit" {
			return
		}
		if msg == "/stats" {
			printStats(ep)
			continue
		}

		if err := ep.Send(ctx, []byte(msg), dest); err != nil {
			pterm.Error.Printfln("delivery failed: %v", err)
			continue
		}
		pterm.Success.Println("acknowledged")
	}
}

func printStats(ep *endpoint.Endpoint) {
	s := ep.Stats()
	pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"counter", "value"},
		{"frames sent", pterm.Sprintf("%d", s.FramesSent)},
		{"frames received", pterm.Sprintf("%d", s.FramesReceived)},
		{"frame errors", pterm.Sprintf("%d", s.FrameErrors)},
		{"retransmissions", pterm.Sprintf("%d", s.Retransmissions)},
		{"messages sent", pterm.Sprintf("%d", s.MessagesSent)},
		{"messages delivered", pterm.Sprintf("%d", s.MessagesDelivered)},
		{"duplicates", pterm.Sprintf("%d", s.Duplicates)},
		{"corrected codewords", pterm.Sprintf("%d", s.CorrectedCodewords)},
	}).Render()
}
