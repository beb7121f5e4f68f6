// Package metrics exposes scan metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"PrebloomScout/internal/model"
	"PrebloomScout/internal/pipeline"
)

const namespace = "prebloom_scout"

var _ pipeline.Observer = (*Recorder)(nil)

// Recorder implements pipeline.Observer using Prometheus.
type Recorder struct {
	verdicts      *prometheus.CounterVec
	scans         *prometheus.CounterVec
	scanDuration  prometheus.Histogram
	unitsScanned  prometheus.Gauge
	confirmed     prometheus.Gauge
	outOfHorizon  prometheus.Gauge
	tickersRanked prometheus.Gauge
	directorySize prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// New creates a Recorder registered with reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validator",
			Name:      "verdicts_total",
			Help:      "Candidate verdicts by outcome",
		}, []string{"outcome"}),
		scans: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Scan runs by status",
		}, []string{"status"}),
		scanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "pipeline_duration_seconds",
			Help:      "Pipeline pass duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		unitsScanned: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "units",
			Help:      "Text units processed by the last scan",
		}),
		confirmed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "confirmed_mentions",
			Help:      "Confirmed mentions in the last scan",
		}),
		outOfHorizon: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "out_of_horizon_mentions",
			Help:      "Confirmed mentions older than the analysis horizon in the last scan",
		}),
		tickersRanked: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "tickers_ranked",
			Help:      "Tickers in the last ranked output",
		}),
		directorySize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "directory",
			Name:      "symbols",
			Help:      "Symbols in the loaded directory",
		}),
		lastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful scan",
		}),
	}
}

// VerdictObserved counts a validator verdict, labelled "confirmed" or by reason.
func (r *Recorder) VerdictObserved(v model.Verdict) {
	outcome := "confirmed"
	if !v.Confirmed {
		outcome = string(v.Reason)
	}
	r.verdicts.WithLabelValues(outcome).Inc()
}

// RunCompleted records the statistics of a finished pipeline pass.
func (r *Recorder) RunCompleted(stats pipeline.Stats, elapsed time.Duration) {
	r.scanDuration.Observe(elapsed.Seconds())
	r.unitsScanned.Set(float64(stats.Units))
	r.confirmed.Set(float64(stats.Confirmed))
	r.outOfHorizon.Set(float64(stats.OutOfHorizon))
	r.tickersRanked.Set(float64(stats.Ranked))
}

// DirectoryLoaded records the directory size.
func (r *Recorder) DirectoryLoaded(symbols int) {
	r.directorySize.Set(float64(symbols))
}

// ScanFinished counts a scan by outcome.
func (r *Recorder) ScanFinished(err error) {
	if err != nil {
		r.scans.WithLabelValues("error").Inc()
		return
	}
	r.scans.WithLabelValues("ok").Inc()
	r.lastSuccess.SetToCurrentTime()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
