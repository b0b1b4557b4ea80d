package observability

import (
	"testing"
	"time"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordFrameTx()
	RecordFrameRx()
	RecordFrameError("integrity")
	RecordFECCorrections(3)
	RecordFECCorrections(0)
	RecordRetransmission()
	RecordMessage("success")
	RecordMessage("failed")
	RecordDuplicate()
	RecordHTTPRequest("link-a", "GET", "/health", 200, 12*time.Millisecond)
}
