// Package metrics provides Prometheus collectors for the client's media and
// push activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the recording interface used by controllers. A nil-safe
// default (Nop) keeps instrumentation optional.
type Collector interface {
	RecordUploadSuccess(kind string, bytes int64, d time.Duration)
	RecordUploadFailure(kind string)
	RecordPushEnabled()
	RecordPushDisabled()
	RecordTrackSwitch()
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordUploadSuccess(string, int64, time.Duration) {}
func (Nop) RecordUploadFailure(string)                       {}
func (Nop) RecordPushEnabled()                               {}
func (Nop) RecordPushDisabled()                              {}
func (Nop) RecordTrackSwitch()                               {}

// PromCollector records measurements into a Prometheus registry.
type PromCollector struct {
	uploadOK      *prometheus.CounterVec
	uploadFail    *prometheus.CounterVec
	uploadBytes   *prometheus.CounterVec
	uploadLatency prometheus.Histogram
	pushToggles   *prometheus.CounterVec
	trackSwitches prometheus.Counter
}

func NewPromCollector(reg prometheus.Registerer) *PromCollector {
	c := &PromCollector{
		uploadOK: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caminho_upload_success_total",
			Help: "Completed media uploads by kind.",
		}, []string{"kind"}),
		uploadFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caminho_upload_fail_total",
			Help: "Failed media uploads by kind, after retries.",
		}, []string{"kind"}),
		uploadBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caminho_upload_bytes_total",
			Help: "Bytes successfully uploaded by kind.",
		}, []string{"kind"}),
		uploadLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "caminho_upload_duration_seconds",
			Help:    "Wall time of successful uploads.",
			Buckets: prometheus.DefBuckets,
		}),
		pushToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caminho_push_toggle_total",
			Help: "Push subscription enable/disable transitions.",
		}, []string{"state"}),
		trackSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caminho_playback_track_switch_total",
			Help: "Number of active-track switches in the player.",
		}),
	}

	reg.MustRegister(
		c.uploadOK,
		c.uploadFail,
		c.uploadBytes,
		c.uploadLatency,
		c.pushToggles,
		c.trackSwitches,
	)

	return c
}

func (c *PromCollector) RecordUploadSuccess(kind string, bytes int64, d time.Duration) {
	c.uploadOK.WithLabelValues(kind).Inc()
	c.uploadBytes.WithLabelValues(kind).Add(float64(bytes))
	c.uploadLatency.Observe(d.Seconds())
}

func (c *PromCollector) RecordUploadFailure(kind string) {
	c.uploadFail.WithLabelValues(kind).Inc()
}

func (c *PromCollector) RecordPushEnabled() {
	c.pushToggles.WithLabelValues("enabled").Inc()
}

func (c *PromCollector) RecordPushDisabled() {
	c.pushToggles.WithLabelValues("disabled").Inc()
}

func (c *PromCollector) RecordTrackSwitch() {
	c.trackSwitches.Inc()
}

// Handler returns an HTTP handler exposing the registry for scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
