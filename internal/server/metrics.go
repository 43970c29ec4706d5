package server

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

// Metrics counts operations per set. All counters carry a "set" label.
type Metrics struct {
	Adds            metrics.Counter
	Removes         metrics.Counter
	Merges          metrics.Counter
	MalformedMerges metrics.Counter
}

// NewMetrics returns prometheus backed counters, or discarding ones when
// metrics are not exported.
func NewMetrics(enabled bool) *Metrics {
	if !enabled {
		return &Metrics{
			Adds:            discard.NewCounter(),
			Removes:         discard.NewCounter(),
			Merges:          discard.NewCounter(),
			MalformedMerges: discard.NewCounter(),
		}
	}

	counter := func(name, help string) metrics.Counter {
		return prometheus.NewCounterFrom(prom.CounterOpts{
			Namespace: "lww",
			Subsystem: "server",
			Name:      name,
			Help:      help,
		}, []string{"set"})
	}

	return &Metrics{
		Adds:            counter("adds_total", "Number of local adds"),
		Removes:         counter("removes_total", "Number of local removes"),
		Merges:          counter("merges_total", "Number of applied snapshots"),
		MalformedMerges: counter("malformed_merges_total", "Number of rejected snapshots"),
	}
}
