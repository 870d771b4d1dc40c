package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes training progress as Prometheus metrics on a private
// registry.
type Recorder struct {
	registry *prometheus.Registry

	Epochs        prometheus.Counter
	Loss          prometheus.Gauge
	EpochDuration prometheus.Histogram
	Throughput    prometheus.Gauge
	Accuracy      *prometheus.GaugeVec
	GraphNodes    prometheus.Gauge
	GraphEdges    prometheus.Gauge
}

// NewRecorder registers the training metrics, labelled with runID.
func NewRecorder(runID string) *Recorder {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"run": runID}
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		Epochs: factory.NewCounter(prometheus.CounterOpts{
			Name:        "gcn_epochs_total",
			Help:        "Number of completed training epochs",
			ConstLabels: labels,
		}),
		Loss: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "gcn_train_loss",
			Help:        "Masked cross-entropy loss of the latest epoch",
			ConstLabels: labels,
		}),
		EpochDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "gcn_epoch_duration_seconds",
			Help:        "Wall time of timed (post warm-up) epochs",
			Buckets:     prometheus.ExponentialBuckets(0.0005, 2, 16),
			ConstLabels: labels,
		}),
		Throughput: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "gcn_throughput_kteps",
			Help:        "Thousands of traversed edges per second, averaged over timed epochs",
			ConstLabels: labels,
		}),
		Accuracy: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gcn_accuracy_ratio",
			Help:        "Final classification accuracy per node split",
			ConstLabels: labels,
		}, []string{"split"}),
		GraphNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "gcn_graph_nodes",
			Help:        "Number of nodes in the training graph",
			ConstLabels: labels,
		}),
		GraphEdges: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "gcn_graph_edges",
			Help:        "Number of directed edges in the training graph, self-loops included",
			ConstLabels: labels,
		}),
	}
}

// ObserveEpoch records one epoch. timed is false for warm-up epochs.
func (r *Recorder) ObserveEpoch(d time.Duration, loss float64, timed bool, snap Snapshot) {
	r.Epochs.Inc()
	r.Loss.Set(loss)
	if timed {
		r.EpochDuration.Observe(d.Seconds())
		r.Throughput.Set(snap.KTEPS)
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric in the text exposition format, for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
