package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/alert"
	"github.com/i474232898/weather-dashboard/internal/chart"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

type cityWeather struct {
	main  string
	temp  float64
	min   float64
	max   float64
	wind  float64
	delay time.Duration
}

// upstream fakes the OpenWeatherMap endpoint; cities missing from the map get a 404.
func upstream(t *testing.T, cities map[string]cityWeather) *weather.Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("q")
		cw, ok := cities[name]
		if !ok {
			http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
			return
		}
		time.Sleep(cw.delay)
		fmt.Fprintf(w, `{"name":%q,"weather":[{"main":%q}],"main":{"temp":%v,"temp_min":%v,"temp_max":%v},"wind":{"speed":%v}}`,
			name, cw.main, cw.temp, cw.min, cw.max, cw.wind)
	}))
	t.Cleanup(srv.Close)

	p := providers.NewOpenWeatherProvider(srv.Client(), "test-key", providers.WithBaseURL(srv.URL))
	return weather.NewService(nil, p)
}

func TestPuneScenario(t *testing.T) {
	svc := upstream(t, map[string]cityWeather{
		"Pune": {main: "Clear", temp: 36, min: 30, max: 37, wind: 5},
	})
	d := New(svc, []string{"Pune"}, alert.ModeAccumulate, nil)

	report := d.Refresh(context.Background())
	assert.Equal(t, 1, report.Succeeded)
	assert.NotEmpty(t, report.ID)

	v := d.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, Row{City: "Pune", Description: "Clear", Temperature: "36°C", TempMax: "37°C", TempMin: "30°C"}, v.Rows[0])

	require.Len(t, v.Alerts, 1)
	assert.Equal(t, "High temperature alert in Pune: 36°C", v.Alerts[0].Message)

	require.Len(t, v.Records, 1)
	assert.Equal(t, weather.Record{City: "Pune", Temperatures: []float64{36}}, v.Records[0])
}

func TestFailingCityIsAbsent(t *testing.T) {
	svc := upstream(t, map[string]cityWeather{
		"Nagpur": {main: "Clear", temp: 30, min: 28, max: 32, wind: 3},
		"Indore": {main: "Thunderstorm", temp: 25, min: 22, max: 27, wind: 4},
	})
	d := New(svc, []string{"Nagpur", "Atlantis", "Indore"}, alert.ModeAccumulate, nil)

	report := d.Refresh(context.Background())
	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "Atlantis", report.Failures[0].City)

	v := d.View()
	var cities []string
	for _, r := range v.Rows {
		cities = append(cities, r.City)
	}
	assert.ElementsMatch(t, []string{"Nagpur", "Indore"}, cities)
	assert.Len(t, v.Records, 2)

	for _, a := range v.Alerts {
		assert.NotEqual(t, "Atlantis", a.City)
	}
	require.Len(t, v.Alerts, 1)
	assert.Equal(t, "Severe weather alert in Indore: Thunderstorm", v.Alerts[0].Message)
	assert.Len(t, v.Chart.Datasets(), 2)
}

func TestChartHasOneDatasetPerCity(t *testing.T) {
	svc := upstream(t, map[string]cityWeather{
		"A": {main: "Clear", temp: 20, delay: 30 * time.Millisecond},
		"B": {main: "Clouds", temp: 22},
	})
	renderer := chart.NewRenderer()
	d := New(svc, []string{"A", "B"}, alert.ModeAccumulate, renderer)

	d.Refresh(context.Background())
	v := d.View()

	require.NotNil(t, v.Chart)
	var labels []string
	for _, ds := range v.Chart.Datasets() {
		labels = append(labels, ds.Label)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, labels)

	// Records follow completion order.
	assert.Equal(t, "B", v.Records[0].City)
	assert.Equal(t, "A", v.Records[1].City)

	first := v.Chart
	d.Refresh(context.Background())
	assert.True(t, first.Released())
	assert.Equal(t, 1, renderer.Live())
}

func TestReplaceModeShowsOnlyLastCompletedFetch(t *testing.T) {
	svc := upstream(t, map[string]cityWeather{
		"Hot":   {main: "Clear", temp: 40},
		"Windy": {main: "Clear", temp: 20, wind: 25, delay: 40 * time.Millisecond},
	})

	replace := New(svc, []string{"Hot", "Windy"}, alert.ModeReplace, nil)
	replace.Refresh(context.Background())
	got := replace.View().Alerts
	require.Len(t, got, 1)
	assert.Equal(t, "Windy", got[0].City)

	accumulate := New(svc, []string{"Hot", "Windy"}, alert.ModeAccumulate, nil)
	accumulate.Refresh(context.Background())
	assert.Len(t, accumulate.View().Alerts, 2)
}

func TestRefreshStartsFromEmptyBoard(t *testing.T) {
	svc := upstream(t, map[string]cityWeather{"Pune": {main: "Clear", temp: 36}})
	d := New(svc, []string{"Pune"}, alert.ModeAccumulate, nil)

	d.Refresh(context.Background())
	d.Refresh(context.Background())

	v := d.View()
	assert.Len(t, v.Rows, 1)
	assert.Len(t, v.Records, 1)
	assert.Len(t, v.Alerts, 1)
}

func TestRefreshRecoversAfterUpstreamOutage(t *testing.T) {
	roster := []string{"Sausar", "Pandhurna", "Chhindwara", "Nagpur", "Bengaluru", "Indore", "Pune"}

	var down atomic.Bool
	down.Store(true)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if down.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"name":%q,"weather":[{"main":"Clear"}],"main":{"temp":25,"temp_min":20,"temp_max":28},"wind":{"speed":3}}`,
			r.URL.Query().Get("q"))
	}))
	defer srv.Close()

	p := providers.NewOpenWeatherProvider(srv.Client(), "test-key", providers.WithBaseURL(srv.URL))
	d := New(weather.NewService(nil, p), roster, alert.ModeAccumulate, chart.NewRenderer())
	defer d.Close()

	outage := d.Refresh(context.Background())
	assert.Equal(t, 0, outage.Succeeded)
	assert.Len(t, outage.Failures, len(roster))
	assert.Empty(t, d.View().Rows)

	down.Store(false)
	hits.Store(0)

	recovered := d.Refresh(context.Background())
	assert.Equal(t, int32(len(roster)), hits.Load())
	assert.Equal(t, len(roster), recovered.Succeeded)
	assert.Empty(t, recovered.Failures)

	v := d.View()
	assert.Len(t, v.Rows, len(roster))
	assert.Len(t, v.Chart.Datasets(), len(roster))
}

func TestOnSettleSeesIncrementalBoard(t *testing.T) {
	svc := upstream(t, map[string]cityWeather{
		"A": {main: "Clear", temp: 20},
		"B": {main: "Clear", temp: 21},
	})
	d := New(svc, []string{"A", "Missing", "B"}, alert.ModeAccumulate, nil)

	var mu sync.Mutex
	var sizes []int
	d.OnSettle = func(o weather.Outcome, b *Board) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(b.Rows()))
	}

	d.Refresh(context.Background())

	require.Len(t, sizes, 3)
	assert.Equal(t, 2, sizes[2])
	for i := 1; i < len(sizes); i++ {
		assert.GreaterOrEqual(t, sizes[i], sizes[i-1])
	}
}

func TestViewBeforeRefresh(t *testing.T) {
	d := New(weather.NewService(nil, nil), []string{"Pune"}, alert.ModeAccumulate, nil)
	v := d.View()
	assert.Empty(t, v.Rows)
	assert.Nil(t, v.Chart)
	assert.Nil(t, v.Report)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, v))
	assert.Regexp(t, `const config =\s+null\s*;`, buf.String())
}

func TestRosterIsCopied(t *testing.T) {
	roster := []string{"Pune"}
	d := New(weather.NewService(nil, nil), roster, alert.ModeAccumulate, nil)
	roster[0] = "Changed"

	got := d.Roster()
	assert.Equal(t, []string{"Pune"}, got)
	got[0] = "Other"
	assert.Equal(t, []string{"Pune"}, d.Roster())
}

func TestRenderHTML(t *testing.T) {
	svc := upstream(t, map[string]cityWeather{
		"Pune": {main: "Clear", temp: 36, min: 30, max: 37, wind: 5},
	})
	d := New(svc, []string{"Pune"}, alert.ModeAccumulate, nil)
	d.Refresh(context.Background())

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, d.View()))
	page := buf.String()

	assert.Contains(t, page, `<table id="weather-table">`)
	assert.Contains(t, page, "<td>Pune</td>")
	assert.Contains(t, page, "<td>36°C</td>")
	assert.Contains(t, page, "<td>37°C</td>")
	assert.Contains(t, page, "<td>30°C</td>")
	assert.Contains(t, page, "<li>High temperature alert in Pune: 36°C</li>")
	assert.Contains(t, page, `"type":"line"`)
	assert.Contains(t, page, `"label":"Pune"`)
	assert.Equal(t, 1, strings.Count(page, "<tr>")-1)
}

func TestWriteHTML(t *testing.T) {
	d := New(weather.NewService(nil, nil), nil, alert.ModeAccumulate, nil)
	d.Refresh(context.Background())

	path := filepath.Join(t.TempDir(), "dashboard.html")
	require.NoError(t, WriteHTML(path, d.View()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), DefaultTitle)

	matches, err := filepath.Glob(path + ".*.tmp")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
