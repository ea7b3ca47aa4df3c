package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	// DefaultOpenWeatherURL is the OpenWeatherMap current weather endpoint.
	DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

	unitsMetric = "metric"
)

var validate = validator.New()

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// OpenWeatherOption customizes an OpenWeatherProvider.
type OpenWeatherOption func(*OpenWeatherProvider)

// WithBaseURL points the provider at a different endpoint.
func WithBaseURL(u string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithRetries enables retries of transient failures.
func WithRetries(n int) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		p.httpCfg.Backoff.MaxRetries = n
	}
}

// WithCircuitBreaker guards upstream calls with a breaker that opens after
// repeated transport errors, 429 or 5xx responses. Off by default: while it
// is open, fetches fail without reaching the upstream.
func WithCircuitBreaker(enabled bool) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if enabled {
			p.circuit = newCircuitBreaker("openweather")
		} else {
			p.circuit = nil
		}
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...OpenWeatherOption) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: DefaultOpenWeatherURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      0,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// owmPayload is the subset of the current weather response the dashboard reads.
type owmPayload struct {
	Name    string         `json:"name" validate:"required"`
	Weather []owmCondition `json:"weather" validate:"required,min=1,dive"`
	Main    *owmMain       `json:"main" validate:"required"`
	Wind    *owmWind       `json:"wind" validate:"required"`
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmMain struct {
	Temp    *float64 `json:"temp" validate:"required"`
	TempMin *float64 `json:"temp_min" validate:"required"`
	TempMax *float64 `json:"temp_max" validate:"required"`
}

type owmWind struct {
	Speed *float64 `json:"speed" validate:"required"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)
		values.Set("units", unitsMetric)

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) {
			return weather.Reading{}, &weather.FetchError{City: city, StatusCode: se.code}
		}
		return weather.Reading{}, fmt.Errorf("request weather for %s: %w", city, err)
	}
	defer resp.Body.Close()

	var payload owmPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, &weather.DecodeError{City: city, Err: err}
	}
	if err := validate.Struct(payload); err != nil {
		return weather.Reading{}, &weather.DecodeError{City: city, Err: err}
	}

	return weather.Reading{
		City:        payload.Name,
		Condition:   payload.Weather[0].Main,
		Description: payload.Weather[0].Description,
		Temperature: *payload.Main.Temp,
		TempMin:     *payload.Main.TempMin,
		TempMax:     *payload.Main.TempMax,
		WindSpeed:   *payload.Wind.Speed,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
