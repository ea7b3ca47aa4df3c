package chart

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Renderer owns the current chart. At most one chart it created is live at a time.
type Renderer struct {
	mu         sync.Mutex
	current    *Chart
	generation uint64
	live       atomic.Int64
	rnd        *rand.Rand
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithRand sets the random source used for dataset colors.
func WithRand(r *rand.Rand) Option {
	return func(rr *Renderer) {
		rr.rnd = r
	}
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render releases the current chart, if any, and replaces it with a line chart
// holding one dataset per record. Colors are drawn at random on every call.
func (r *Renderer) Render(records []weather.Record) *Chart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.Release()
		r.current = nil
	}

	datasets := make([]Dataset, 0, len(records))
	for _, rec := range records {
		data := make([]float64, len(rec.Temperatures))
		copy(data, rec.Temperatures)
		datasets = append(datasets, Dataset{
			Label:           rec.City,
			Data:            data,
			BorderColor:     r.randomColor(1),
			BackgroundColor: r.randomColor(0.2),
			Fill:            true,
		})
	}

	labels := make([]string, len(PlaceholderLabels))
	copy(labels, PlaceholderLabels)

	r.generation++
	c := &Chart{
		Generation: r.generation,
		Config: Config{
			Type: "line",
			Data: Data{
				Labels:   labels,
				Datasets: datasets,
			},
			Options: Options{
				Responsive: true,
				Scales:     Scales{Y: Axis{BeginAtZero: false}},
			},
		},
		live: &r.live,
	}
	r.live.Add(1)
	r.current = c
	metrics.ChartRendersTotal.Inc()

	log.Printf("DEBUG: chart generation %d rendered with %d datasets", c.Generation, len(datasets))
	return c
}

// Current returns the live chart, or nil before the first Render.
func (r *Renderer) Current() *Chart {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Live returns how many charts created by this renderer are not released.
func (r *Renderer) Live() int {
	return int(r.live.Load())
}

// Close releases the current chart.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Release()
		r.current = nil
	}
}

func (r *Renderer) randomColor(opacity float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", r.rnd.Intn(256), r.rnd.Intn(256), r.rnd.Intn(256), opacity)
}
