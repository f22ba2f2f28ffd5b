// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"firestige.xyz/vkreplay/internal/core"
	"firestige.xyz/vkreplay/internal/dispatch"
)

var (
	// PacketsReadTotal counts packets read from the trace by kind
	PacketsReadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vkreplay_packets_read_total",
			Help: "Total number of packets read from the trace",
		},
		[]string{"kind"},
	)

	// PacketBytes tracks packet size distribution
	PacketBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vkreplay_packet_bytes",
			Help:    "Size of trace packets in bytes, header included",
			Buckets: prometheus.ExponentialBuckets(64, 2, 16), // 64B to 2MiB
		},
	)

	// APICallsTotal counts dispatched API calls by tracer and replay status
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vkreplay_api_calls_total",
			Help: "Total number of API calls dispatched to replayers",
		},
		[]string{"tracer", "status"},
	)

	// SkippedPacketsTotal counts API calls with no replayer
	SkippedPacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vkreplay_skipped_packets_total",
			Help: "Total number of API call packets skipped because no replayer handles their tracer",
		},
		[]string{"tracer"},
	)

	// LoopIterationsTotal counts finished loop iterations
	LoopIterationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vkreplay_loop_iterations_total",
			Help: "Total number of finished loop iterations",
		},
	)

	// CurrentFrame tracks the frame number reported after the last successful call
	CurrentFrame = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vkreplay_current_frame",
			Help: "Frame number reported by the replayer after the last successful call",
		},
	)
)

// Recorder feeds replay progress into the package metrics.
type Recorder struct{}

// NewRecorder creates a Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PacketRead(p *core.Packet) {
	PacketsReadTotal.WithLabelValues(p.Kind.String()).Inc()
	PacketBytes.Observe(float64(p.Size))
}

func (r *Recorder) Dispatched(p *core.Packet, res dispatch.Result) {
	tracer := p.TracerID.String()
	if res.Skipped {
		SkippedPacketsTotal.WithLabelValues(tracer).Inc()
		return
	}
	APICallsTotal.WithLabelValues(tracer, res.Status.String()).Inc()
	if res.Status == core.ReplaySuccess {
		CurrentFrame.Set(float64(res.Frame))
	}
}

func (r *Recorder) IterationDone(int) {
	LoopIterationsTotal.Inc()
}
