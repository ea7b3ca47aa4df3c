package dashboard

import (
	"sync"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Row is one rendered line of the weather table.
type Row struct {
	City        string `json:"city"`
	Description string `json:"description"`
	Temperature string `json:"temperature"`
	TempMax     string `json:"tempMax"`
	TempMin     string `json:"tempMin"`
}

// NewRow formats a reading for the table.
func NewRow(r weather.Reading) Row {
	return Row{
		City:        r.City,
		Description: r.DisplayDescription(),
		Temperature: common.Celsius(r.Temperature),
		TempMax:     common.Celsius(r.TempMax),
		TempMin:     common.Celsius(r.TempMin),
	}
}

// Board is the state of one refresh: the chart records, the table and the
// alert list. Records and rows are append-only and in completion order.
type Board struct {
	mu      sync.RWMutex
	records []weather.Record
	rows    []Row
	alerts  *alert.List
}

func NewBoard(mode alert.Mode) *Board {
	return &Board{alerts: alert.NewList(mode)}
}

// Settle applies one settled fetch. A failed fetch leaves the board untouched.
// It returns the alerts raised by a successful fetch.
func (b *Board) Settle(o weather.Outcome) []alert.Alert {
	if !o.OK() {
		return nil
	}

	b.mu.Lock()
	b.records = append(b.records, o.Reading.Record())
	b.rows = append(b.rows, NewRow(o.Reading))
	b.mu.Unlock()

	return b.alerts.Apply([]weather.Snapshot{o.Reading.Snapshot()})
}

// Records returns a copy of the accumulated records.
func (b *Board) Records() []weather.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]weather.Record, len(b.records))
	copy(out, b.records)
	return out
}

// Rows returns a copy of the table rows.
func (b *Board) Rows() []Row {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Row, len(b.rows))
	copy(out, b.rows)
	return out
}

// Alerts returns a copy of the alert list.
func (b *Board) Alerts() []alert.Alert {
	return b.alerts.Alerts()
}
