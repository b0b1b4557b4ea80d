// Linkeval measures delivery behavior across message sizes on a simulated
// lossy link: two in-process endpoints exchange randomized payloads through
// a corrupting pipe and the sweep reports success rate, latency, and
// retransmission cost per size.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/linkctl/internal/arq"
	"github.com/danmuck/linkctl/internal/channel"
	"github.com/danmuck/linkctl/internal/fragment"
	"github.com/danmuck/linkctl/internal/observability"
	"github.com/danmuck/linkctl/internal/protocol"
)

type sizeResult struct {
	size           int
	fragments      int
	runs           int
	successes      int
	avgLatency     time.Duration
	avgRetransmits float64
	wireBytes      int
	overheadFactor float64
}

func main() {
	observability.InitLogger("linkeval")

	configPath := flag.String("config", "cmd/linkeval/scenario.toml", "path to scenario config")
	reportPath := flag.String("report", "", "report output path (default logs/linkeval-<unix>.txt)")
	flag.Parse()

	sc, err := loadScenario(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scenario")
	}
	log.Info().
		Float64("drop_rate", sc.DropRate).
		Float64("flip_rate", sc.FlipRate).
		Ints("sizes", sc.Sizes).
		Int("runs_per_size", sc.RunsPerSize).
		Msg("scenario loaded")

	ctx := context.Background()
	results := make([]sizeResult, 0, len(sc.Sizes))
	for _, size := range sc.Sizes {
		res := evaluateSize(ctx, sc, size)
		results = append(results, res)
		log.Info().
			Int("size", res.size).
			Int("successes", res.successes).
			Int("runs", res.runs).
			Dur("avg_latency", res.avgLatency).
			Msg("size evaluated")
	}

	renderTable(results)

	target := *reportPath
	if target == "" {
		target = filepath.Join("logs", fmt.Sprintf("linkeval-%d.txt", time.Now().Unix()))
	}
	if err := writeReport(target, sc, results); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}
	pterm.Success.Printfln("report written to %s", target)
}

// evaluateSize runs one batch of exchanges at a fixed message size. Each run
// gets fresh engines and a deterministically seeded corrupter so sweeps are
// reproducible.
func evaluateSize(ctx context.Context, sc scenario, size int) sizeResult {
	cfg := arq.DefaultConfig()
	cfg.FragmentSize = sc.FragmentSize
	cfg.AckTimeout = time.Duration(sc.AckTimeoutMS) * time.Millisecond
	cfg.PollTimeout = 10 * time.Millisecond
	cfg.MaxRetry = sc.MaxRetry

	res := sizeResult{size: size, runs: sc.RunsPerSize}
	res.fragments, res.wireBytes = wireCost(size, sc.FragmentSize)
	res.overheadFactor = float64(res.wireBytes) / float64(size)

	var totalLatency time.Duration
	var totalRetransmits uint64
	for run := 0; run < sc.RunsPerSize; run++ {
		rng := rand.New(rand.NewSource(sc.Seed + int64(size)*1000 + int64(run)))
		payload := make([]byte, size)
		rng.Read(payload)

		latency, retransmits, ok := runExchange(ctx, cfg, rng, sc, payload)
		totalRetransmits += retransmits
		if ok {
			res.successes++
			totalLatency += latency
		}
	}
	if res.successes > 0 {
		res.avgLatency = totalLatency / time.Duration(res.successes)
	}
	res.avgRetransmits = float64(totalRetransmits) / float64(sc.RunsPerSize)
	return res
}

func runExchange(ctx context.Context, cfg arq.Config, rng *rand.Rand, sc scenario, payload []byte) (time.Duration, uint64, bool) {
	chA, chB := channel.Pipe()
	lossy := channel.NewLossy(chA, channel.NewCorrupter(rng, sc.DropRate, sc.FlipRate))

	delivered := make(chan []byte, 1)
	sender := arq.NewEngine(lossy, cfg, nil)
	receiver := arq.NewEngine(chB, cfg, func(msg []byte, from net.Addr) {
		delivered <- msg
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go sender.Run(runCtx)
	go receiver.Run(runCtx)

	start := time.Now()
	err := sender.Send(runCtx, payload, nil)
	latency := time.Since(start)
	retransmits := sender.Snapshot().Retransmissions
	if err != nil {
		return latency, retransmits, false
	}

	select {
	case got := <-delivered:
		return latency, retransmits, bytes.Equal(got, payload)
	case <-time.After(2 * time.Second):
		return latency, retransmits, false
	}
}

// wireCost returns the fragment count and total encoded bytes one message
// of the given size costs on the wire, before any retransmission.
func wireCost(size, fragmentSize int) (int, int) {
	payloads := [][]byte{make([]byte, size)}
	if fragment.ShouldFragment(make([]byte, size), fragmentSize) {
		payloads = fragment.Split(make([]byte, size), fragmentSize)
	}
	total := 0
	for _, p := range payloads {
		total += protocol.HeaderLen + 2*len(p) + protocol.TrailerLen
	}
	return len(payloads), total
}

func renderTable(results []sizeResult) {
	data := pterm.TableData{
		{"size", "fragments", "success", "avg latency", "avg rtx", "wire bytes", "overhead"},
	}
	for _, r := range results {
		data = append(data, []string{
			fmt.Sprintf("%d", r.size),
			fmt.Sprintf("%d", r.fragments),
			fmt.Sprintf("%d/%d", r.successes, r.runs),
			r.avgLatency.Round(time.Microsecond).String(),
			fmt.Sprintf("%.2f", r.avgRetransmits),
			fmt.Sprintf("%d", r.wireBytes),
			fmt.Sprintf("%.2fx", r.overheadFactor),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func writeReport(path string, sc scenario, results []sizeResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "linkeval report %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "drop_rate=%.4f flip_rate=%.4f seed=%d fragment_size=%d ack_timeout_ms=%d max_retry=%d\n\n",
		sc.DropRate, sc.FlipRate, sc.Seed, sc.FragmentSize, sc.AckTimeoutMS, sc.MaxRetry)
	fmt.Fprintf(&b, "%8s %10s %10s %14s %10s %12s %10s\n",
		"size", "fragments", "success", "avg_latency", "avg_rtx", "wire_bytes", "overhead")
	for _, r := range results {
		fmt.Fprintf(&b, "%8d %10d %7d/%-2d %14s %10.2f %12d %9.2fx\n",
			r.size, r.fragments, r.successes, r.runs,
			r.avgLatency.Round(time.Microsecond), r.avgRetransmits, r.wireBytes, r.overheadFactor)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
