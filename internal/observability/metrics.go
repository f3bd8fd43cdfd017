package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbox",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"device", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slotbox",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"device", "method", "path", "status"},
	)
	commandRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbox",
			Subsystem: "command",
			Name:      "requests_total",
			Help:      "Commands dispatched, by opcode and resulting status.",
		},
		[]string{"device", "opcode", "status"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slotbox",
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Command dispatch duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"device", "opcode"},
	)
	updateCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbox",
			Subsystem: "runtime",
			Name:      "update_cycles_total",
			Help:      "Cooperative update cycles completed.",
		},
		[]string{"device"},
	)
	updateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slotbox",
			Subsystem: "runtime",
			Name:      "update_cycle_duration_seconds",
			Help:      "Update cycle duration in seconds, waits included.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"device"},
	)
	objectsResident = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "slotbox",
			Subsystem: "runtime",
			Name:      "objects_resident",
			Help:      "Objects currently resident in the user tree.",
		},
		[]string{"device"},
	)
	eepromUsed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "slotbox",
			Subsystem: "storage",
			Name:      "eeprom_used_bytes",
			Help:      "Record bytes used across in-use profiles.",
		},
		[]string{"device"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			commandRequests,
			commandDuration,
			updateCycles,
			updateDuration,
			objectsResident,
			eepromUsed,
		)
	})
}

func RecordHTTPRequest(device, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(device, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(device, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCommand(device, opcode, status string, duration time.Duration) {
	RegisterMetrics()
	commandRequests.WithLabelValues(device, opcode, status).Inc()
	commandDuration.WithLabelValues(device, opcode).Observe(duration.Seconds())
}

func RecordUpdateCycle(device string, duration time.Duration) {
	RegisterMetrics()
	updateCycles.WithLabelValues(device).Inc()
	updateDuration.WithLabelValues(device).Observe(duration.Seconds())
}

func SetObjectsResident(device string, n int) {
	RegisterMetrics()
	objectsResident.WithLabelValues(device).Set(float64(n))
}

func SetEepromUsed(device string, bytes uint32) {
	RegisterMetrics()
	eepromUsed.WithLabelValues(device).Set(float64(bytes))
}
