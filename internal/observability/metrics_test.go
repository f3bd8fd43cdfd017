package observability

import (
	"testing"
	"time"

	"github.com/danmuck/slotbox/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)

	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("box-a", "GET", "/health", 200, 12*time.Millisecond)
	RecordCommand("box-a", "read-value", "ok", 3*time.Millisecond)
	RecordUpdateCycle("box-a", 10*time.Millisecond)
	SetObjectsResident("box-a", 4)
	SetEepromUsed("box-a", 96)
}
