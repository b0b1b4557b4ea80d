package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesTx = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "frame",
			Name:      "tx_total",
			Help:      "Frames transmitted, acknowledgments included.",
		},
	)
	framesRx = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "frame",
			Name:      "rx_total",
			Help:      "Datagrams received, before decoding.",
		},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "frame",
			Name:      "errors_total",
			Help:      "Frames dropped at the codec boundary.",
		},
		[]string{"reason"},
	)
	fecCorrected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "fec",
			Name:      "corrected_codewords_total",
			Help:      "Hamming codewords repaired during decode.",
		},
	)
	retransmissions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "arq",
			Name:      "retransmissions_total",
			Help:      "Fragment retransmissions after an ack timeout.",
		},
	)
	messages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "arq",
			Name:      "messages_total",
			Help:      "Logical message sends by outcome.",
		},
		[]string{"result"},
	)
	duplicates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "arq",
			Name:      "duplicates_total",
			Help:      "Received messages suppressed as duplicates.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests to the stats API.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linkctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesTx, framesRx, frameErrors, fecCorrected,
			retransmissions, messages, duplicates,
			httpRequests, httpDuration,
		)
	})
}

func RecordFrameTx() {
	RegisterMetrics()
	framesTx.Inc()
}

func RecordFrameRx() {
	RegisterMetrics()
	framesRx.Inc()
}

func RecordFrameError(reason string) {
	RegisterMetrics()
	frameErrors.WithLabelValues(reason).Inc()
}

func RecordFECCorrections(n int) {
	if n <= 0 {
		return
	}
	RegisterMetrics()
	fecCorrected.Add(float64(n))
}

func RecordRetransmission() {
	RegisterMetrics()
	retransmissions.Inc()
}

func RecordMessage(result string) {
	RegisterMetrics()
	messages.WithLabelValues(result).Inc()
}

func RecordDuplicate() {
	RegisterMetrics()
	duplicates.Inc()
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}
