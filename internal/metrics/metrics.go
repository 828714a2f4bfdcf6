// Package metrics exports Prometheus counters for the device and host sides
// of a funkboot session.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	deviceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "funkboot",
			Subsystem: "device",
			Name:      "requests_total",
			Help:      "Packets taken from the receive queue by the bootloader.",
		},
		[]string{"node", "command"},
	)
	deviceResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "funkboot",
			Subsystem: "device",
			Name:      "responses_total",
			Help:      "Responses queued for transmission, including retransmissions.",
		},
		[]string{"node", "command", "cause"},
	)
	deviceDrops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "funkboot",
			Subsystem: "device",
			Name:      "dropped_total",
			Help:      "Requests dropped because a response was still pending.",
		},
		[]string{"node"},
	)
	hostRetransmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "funkboot",
			Subsystem: "host",
			Name:      "retransmissions_total",
			Help:      "Requests the host sent more than once.",
		},
		[]string{"target"},
	)
	hostPrograms = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "funkboot",
			Subsystem: "host",
			Name:      "programs_total",
			Help:      "Programming sessions by outcome.",
		},
		[]string{"target", "success"},
	)
	hostProgramDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "funkboot",
			Subsystem: "host",
			Name:      "program_duration_seconds",
			Help:      "Programming session duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"target", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			deviceRequests,
			deviceResponses,
			deviceDrops,
			hostRetransmissions,
			hostPrograms,
			hostProgramDuration,
		)
	})
}

func RecordRequest(node, command string) {
	RegisterMetrics()
	deviceRequests.WithLabelValues(node, command).Inc()
}

func RecordResponse(node, command, cause string) {
	RegisterMetrics()
	deviceResponses.WithLabelValues(node, command, cause).Inc()
}

func RecordDrop(node string) {
	RegisterMetrics()
	deviceDrops.WithLabelValues(node).Inc()
}

// RecordProgram records one host session and the retransmissions it needed.
func RecordProgram(target string, duration time.Duration, retransmissions int, success bool) {
	RegisterMetrics()
	successLabel := strconv.FormatBool(success)
	hostPrograms.WithLabelValues(target, successLabel).Inc()
	hostProgramDuration.WithLabelValues(target, successLabel).Observe(duration.Seconds())
	if retransmissions > 0 {
		hostRetransmissions.WithLabelValues(target).Add(float64(retransmissions))
	}
}
