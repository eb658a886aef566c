// Package metrics exports link activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/uartframe/pkg/l0/frame"
)

var (
	registerOnce sync.Once

	framesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uartframe",
			Subsystem: "link",
			Name:      "frames_received_total",
			Help:      "Frames decoded from the link.",
		},
		[]string{"link"},
	)
	framesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uartframe",
			Subsystem: "link",
			Name:      "frames_dropped_total",
			Help:      "Frame candidates dropped by decode error.",
		},
		[]string{"link", "reason"},
	)
	framesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uartframe",
			Subsystem: "link",
			Name:      "frames_sent_total",
			Help:      "Frames queued for transmission.",
		},
		[]string{"link"},
	)
	frameDataSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "uartframe",
			Subsystem: "link",
			Name:      "frame_data_bytes",
			Help:      "Payload size of frames.",
			Buckets:   []float64{0, 8, 32, 128, 512, frame.FrameDataMaxSize},
		},
		[]string{"link", "direction"},
	)
)

// Register registers all collectors with the default registry. It is safe
// to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesReceived, framesDropped, framesSent, frameDataSize)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

// ReasonOf returns the drop reason label of err.
func ReasonOf(err error) string {
	var derr frame.DeserializeError
	if errors.As(err, &derr) {
		return derr.String()
	}
	return "Other"
}

// LinkObserver counts activity of one link. It implements comm.Observer.
type LinkObserver struct {
	Link string
}

// NewLinkObserver creates a LinkObserver and registers the collectors.
func NewLinkObserver(link string) *LinkObserver {
	Register()
	return &LinkObserver{Link: link}
}

// FrameReceived implements comm.Observer.
func (o *LinkObserver) FrameReceived(f *frame.Frame) {
	framesReceived.WithLabelValues(o.Link).Inc()
	frameDataSize.WithLabelValues(o.Link, "rx").Observe(float64(len(f.Data)))
}

// FrameDropped implements comm.Observer.
func (o *LinkObserver) FrameDropped(err error) {
	framesDropped.WithLabelValues(o.Link, ReasonOf(err)).Inc()
}

// FrameSent implements comm.Observer.
func (o *LinkObserver) FrameSent(f *frame.Frame) {
	framesSent.WithLabelValues(o.Link).Inc()
	frameDataSize.WithLabelValues(o.Link, "tx").Observe(float64(len(f.Data)))
}
