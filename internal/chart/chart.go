package chart

import (
	"encoding/json"
	"sync"
	"sync/atomic"
)

// PlaceholderLabels is the fixed x axis of every chart. It is not derived from
// the data; a record with fewer samples than labels is left for the charting
// library to align.
var PlaceholderLabels = []string{"2024-12-20", "2024-12-21", "2024-12-22", "2024-12-23", "2024-12-24"}

// Dataset is one line of the chart.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	Fill            bool      `json:"fill"`
}

// Data holds the axis labels and the datasets.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Options mirrors the subset of Chart.js options the dashboard sets.
type Options struct {
	Responsive bool   `json:"responsive"`
	Scales     Scales `json:"scales"`
}

type Scales struct {
	Y Axis `json:"y"`
}

type Axis struct {
	BeginAtZero bool `json:"beginAtZero"`
}

// Config is the Chart.js configuration object.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Chart is a rendered chart instance owned by a Renderer.
type Chart struct {
	Generation uint64
	Config     Config

	once     sync.Once
	released atomic.Bool
	live     *atomic.Int64
}

// Release frees the chart. Calling it more than once is a no-op.
func (c *Chart) Release() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		c.released.Store(true)
		if c.live != nil {
			c.live.Add(-1)
		}
	})
}

// Released reports whether Release has been called.
func (c *Chart) Released() bool {
	return c.released.Load()
}

// Datasets returns the chart's datasets.
func (c *Chart) Datasets() []Dataset {
	return c.Config.Data.Datasets
}

// MarshalJSON encodes the Chart.js configuration.
func (c *Chart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Config)
}
