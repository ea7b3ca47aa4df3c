package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Fetch outcomes used as label values.
const (
	OutcomeSuccess      = "success"
	OutcomeFetchError   = "fetch_error"
	OutcomeDecodeError  = "decode_error"
	OutcomeNetworkError = "network_error"
)

var (
	// FetchesTotal counts settled city fetches by outcome.
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_fetches_total",
			Help: "Total number of settled city weather fetches",
		},
		[]string{"city", "outcome"},
	)

	// FetchDuration tracks how long each city fetch took to settle.
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_fetch_duration_seconds",
			Help:    "Duration of city weather fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// AlertsActive is the size of the alert list after the last refresh.
	AlertsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_alerts_active",
			Help: "Number of alerts in the rendered alert list",
		},
	)

	// AlertsRaisedTotal counts alerts raised by kind.
	AlertsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_alerts_raised_total",
			Help: "Total number of alerts raised",
		},
		[]string{"kind"},
	)

	// ChartRendersTotal counts chart renders.
	ChartRendersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_chart_renders_total",
			Help: "Total number of chart renders",
		},
	)

	// RefreshDuration tracks full dashboard refreshes.
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_refresh_duration_seconds",
			Help:    "Duration of dashboard refreshes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Outcome classifies a fetch error into a label value.
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var fe *weather.FetchError
	if errors.As(err, &fe) {
		return OutcomeFetchError
	}
	var de *weather.DecodeError
	if errors.As(err, &de) {
		return OutcomeDecodeError
	}
	return OutcomeNetworkError
}

// RecordFetch records one settled fetch.
func RecordFetch(o weather.Outcome) {
	outcome := Outcome(o.Err)
	FetchesTotal.WithLabelValues(o.City, outcome).Inc()
	FetchDuration.WithLabelValues(outcome).Observe(o.Duration.Seconds())
}

// RecordRefresh records a completed refresh.
func RecordRefresh(duration time.Duration, alerts int) {
	RefreshDuration.Observe(duration.Seconds())
	AlertsActive.Set(float64(alerts))
}
