package reader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics published by row cursors.
type Metrics struct {
	BatchesRead prometheus.Counter
	RowsRead    prometheus.Counter
	Seeks       prometheus.Counter
	OpenCursors prometheus.Gauge
}

// DefaultMetrics is shared by every reader in the process.
var DefaultMetrics = NewMetrics("colstream")

// NewMetrics creates a new Metrics instance with the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BatchesRead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_read_total",
			Help:      "Total number of column batches read",
		}),
		RowsRead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Total number of rows read into column batches",
		}),
		Seeks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seeks_total",
			Help:      "Total number of cursor row seeks",
		}),
		OpenCursors: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_cursors",
			Help:      "Number of currently open row cursors",
		}),
	}
}
