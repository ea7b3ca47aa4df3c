package weather

import (
	"time"
)

// Reading is one city's normalized current-weather response.
type Reading struct {
	City        string    `json:"city"`
	Condition   string    `json:"condition"`   // primary label, e.g. "Thunderstorm"
	Description string    `json:"description"` // free text, e.g. "light rain"
	Temperature float64   `json:"temperatureC"`
	TempMin     float64   `json:"tempMinC"`
	TempMax     float64   `json:"tempMaxC"`
	WindSpeed   float64   `json:"windSpeed"` // m/s
	FetchedAt   time.Time `json:"fetchedAt"` // always UTC
}

// Record is the per-city entry plotted on the chart.
// It is created once per successful fetch and never mutated.
type Record struct {
	City         string    `json:"city"`
	Temperatures []float64 `json:"temperatures"`
}

// Snapshot is the transient input of alert evaluation.
type Snapshot struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windSpeed"`
	Description string  `json:"description"` // primary condition label
}

// Record returns the chart record for this reading. Only the instantaneous
// temperature is sampled for now.
func (r Reading) Record() Record {
	return Record{
		City:         r.City,
		Temperatures: []float64{r.Temperature},
	}
}

// Snapshot returns the alert input for this reading.
func (r Reading) Snapshot() Snapshot {
	return Snapshot{
		City:        r.City,
		Temperature: r.Temperature,
		WindSpeed:   r.WindSpeed,
		Description: r.Condition,
	}
}

// DisplayDescription is the text shown in the table's description column.
func (r Reading) DisplayDescription() string {
	if r.Description != "" {
		return r.Description
	}
	return r.Condition
}

// Outcome is a settled fetch: either Reading or Err is meaningful.
type Outcome struct {
	City     string
	Reading  Reading
	Err      error
	Duration time.Duration
}

// OK reports whether the fetch succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}
