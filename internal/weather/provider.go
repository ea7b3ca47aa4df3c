package weather

import (
	"context"
	"time"
)

// Provider abstracts a current-weather data source queried by city name.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, city string) (Reading, error)
}

// Store is the contract the in-memory history store must satisfy.
type Store interface {
	SaveReading(reading Reading)
	GetLatest(city string) (Reading, error)
	GetRange(city string, from, to time.Time) ([]Reading, error)
}
