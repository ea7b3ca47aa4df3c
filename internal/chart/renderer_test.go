package chart

import (
	"encoding/json"
	"math/rand"
	"regexp"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/metrics"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var rgba = regexp.MustCompile(`^rgba\((\d{1,3}), (\d{1,3}), (\d{1,3}), (1|0\.2)\)$`)

func records(cities ...string) []weather.Record {
	out := make([]weather.Record, 0, len(cities))
	for i, c := range cities {
		out = append(out, weather.Record{City: c, Temperatures: []float64{float64(20 + i)}})
	}
	return out
}

func TestRenderOneDatasetPerRecord(t *testing.T) {
	r := NewRenderer(WithRand(rand.New(rand.NewSource(1))))

	c := r.Render(records("A", "B"))

	require.Len(t, c.Datasets(), 2)
	assert.Equal(t, "A", c.Datasets()[0].Label)
	assert.Equal(t, []float64{20}, c.Datasets()[0].Data)
	assert.Equal(t, "B", c.Datasets()[1].Label)
	assert.Equal(t, PlaceholderLabels, c.Config.Data.Labels)
	assert.Equal(t, "line", c.Config.Type)
	assert.True(t, c.Config.Options.Responsive)
	assert.False(t, c.Config.Options.Scales.Y.BeginAtZero)

	for _, ds := range c.Datasets() {
		assert.True(t, ds.Fill)
		assert.Regexp(t, rgba, ds.BorderColor)
		assert.Regexp(t, rgba, ds.BackgroundColor)
		assert.Contains(t, ds.BorderColor, ", 1)")
		assert.Contains(t, ds.BackgroundColor, ", 0.2)")
	}
}

func TestRenderReleasesPreviousChart(t *testing.T) {
	r := NewRenderer()
	assert.Nil(t, r.Current())
	assert.Equal(t, 0, r.Live())

	first := r.Render(records("A"))
	second := r.Render(records("A", "B"))

	assert.True(t, first.Released())
	assert.False(t, second.Released())
	assert.Same(t, second, r.Current())
	assert.Equal(t, 1, r.Live())
	assert.Equal(t, first.Generation+1, second.Generation)
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := NewRenderer()
	c := r.Render(records("A"))

	c.Release()
	c.Release()
	assert.Equal(t, 0, r.Live())

	// Render after an external release must not double-count.
	r.Render(records("A"))
	assert.Equal(t, 1, r.Live())

	r.Close()
	r.Close()
	assert.Equal(t, 0, r.Live())
	assert.Nil(t, r.Current())

	var nilChart *Chart
	nilChart.Release()
}

func TestRenderEmpty(t *testing.T) {
	r := NewRenderer()
	c := r.Render(nil)
	assert.Empty(t, c.Datasets())
	assert.Len(t, c.Config.Data.Labels, 5)
}

func TestChartMarshalsChartJSConfig(t *testing.T) {
	r := NewRenderer()
	c := r.Render(records("Pune"))

	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "line", decoded["type"])

	data := decoded["data"].(map[string]any)
	assert.Len(t, data["labels"], 5)
	datasets := data["datasets"].([]any)
	require.Len(t, datasets, 1)
	assert.Equal(t, "Pune", datasets[0].(map[string]any)["label"])

	scales := decoded["options"].(map[string]any)["scales"].(map[string]any)
	assert.Equal(t, false, scales["y"].(map[string]any)["beginAtZero"])
}

func TestRenderCountsEveryRender(t *testing.T) {
	before := testutil.ToFloat64(metrics.ChartRendersTotal)

	r := NewRenderer()
	defer r.Close()
	r.Render(records("Pune"))
	r.Render(nil)

	assert.Equal(t, before+2, testutil.ToFloat64(metrics.ChartRendersTotal))
}
