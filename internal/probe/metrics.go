package probe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	probesPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blasprobe_probes_passed_total",
		Help: "Total number of probe cases that matched the expected value",
	}, []string{"case", "backend"})

	probesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blasprobe_probes_failed_total",
		Help: "Total number of probe cases that deviated beyond tolerance or errored",
	}, []string{"case", "backend"})

	probeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blasprobe_probe_duration_seconds",
		Help:    "Time spent executing one probe case",
		Buckets: prometheus.DefBuckets,
	}, []string{"case"})
)
