package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/chart"
	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Failure describes a city that produced no output in a refresh.
type Failure struct {
	City  string `json:"city"`
	Error string `json:"error"`
}

// Report summarizes one refresh.
type Report struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failures  []Failure     `json:"failures,omitempty"`
	Alerts    int           `json:"alerts"`
	Datasets  int           `json:"datasets"`
}

// View is a consistent copy of the published dashboard.
type View struct {
	Rows      []Row
	Records   []weather.Record
	Alerts    []alert.Alert
	Chart     *chart.Chart
	UpdatedAt time.Time
	Report    *Report
}

// Dashboard runs refreshes over a fixed roster and publishes their results.
type Dashboard struct {
	service *weather.Service
	roster  []string
	mode    alert.Mode
	charts  *chart.Renderer

	// OnSettle, when set, observes every settled fetch after the board is updated.
	OnSettle func(weather.Outcome, *Board)

	refreshMu sync.Mutex

	mu        sync.RWMutex
	board     *Board
	chart     *chart.Chart
	updatedAt time.Time
	report    *Report
}

// New creates a Dashboard. The roster is copied.
func New(service *weather.Service, roster []string, mode alert.Mode, charts *chart.Renderer) *Dashboard {
	if charts == nil {
		charts = chart.NewRenderer()
	}
	r := make([]string, len(roster))
	copy(r, roster)
	return &Dashboard{
		service: service,
		roster:  r,
		mode:    mode,
		charts:  charts,
		board:   NewBoard(mode),
	}
}

// Roster returns a copy of the configured cities.
func (d *Dashboard) Roster() []string {
	out := make([]string, len(d.roster))
	copy(out, d.roster)
	return out
}

// Refresh fetches every city of the roster on a fresh board, publishes the board
// once all fetches have settled and renders the chart exactly once.
// Concurrent calls are serialized.
func (d *Dashboard) Refresh(ctx context.Context) Report {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	start := time.Now()
	report := Report{
		ID:        uuid.NewString(),
		StartedAt: start.UTC(),
		Requested: len(d.roster),
	}

	log.Printf("INFO: refresh %s: fetching weather for %d cities", report.ID, len(d.roster))

	board := NewBoard(d.mode)
	d.service.FetchAll(ctx, d.roster, func(o weather.Outcome) {
		metrics.RecordFetch(o)
		if !o.OK() {
			report.Failures = append(report.Failures, Failure{City: o.City, Error: o.Err.Error()})
		} else {
			report.Succeeded++
			for _, a := range board.Settle(o) {
				metrics.AlertsRaisedTotal.WithLabelValues(string(a.Kind)).Inc()
			}
		}
		if d.OnSettle != nil {
			d.OnSettle(o, board)
		}
	})

	c := d.charts.Render(board.Records())

	report.Duration = time.Since(start)
	report.Alerts = len(board.Alerts())
	report.Datasets = len(c.Datasets())

	d.mu.Lock()
	d.board = board
	d.chart = c
	d.updatedAt = time.Now().UTC()
	d.report = &report
	d.mu.Unlock()

	metrics.RecordRefresh(report.Duration, report.Alerts)
	log.Printf("INFO: refresh %s: %d/%d cities, %d alerts, took %s",
		report.ID, report.Succeeded, report.Requested, report.Alerts, report.Duration)

	return report
}

// View returns the last published board and chart.
func (d *Dashboard) View() View {
	d.mu.RLock()
	board, c, updatedAt, report := d.board, d.chart, d.updatedAt, d.report
	d.mu.RUnlock()

	return View{
		Rows:      board.Rows(),
		Records:   board.Records(),
		Alerts:    board.Alerts(),
		Chart:     c,
		UpdatedAt: updatedAt,
		Report:    report,
	}
}

// Close releases the chart.
func (d *Dashboard) Close() {
	d.charts.Close()
}
