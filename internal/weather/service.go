package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Service fans fetches out to the provider and keeps a history of successful readings.
type Service struct {
	store    Store
	provider Provider
}

// NewService creates a new Service. store may be nil when no history is kept.
func NewService(store Store, provider Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
	}
}

// FetchAll fetches every city of the roster concurrently and joins on all of them.
//
// Fetches are launched in roster order and settle in completion order. Each settled
// outcome is handed to settle from the calling goroutine, one at a time, so settle
// may mutate shared state without locking. Failures are logged and reported but never
// stop sibling fetches. The returned slice is in completion order.
func (s *Service) FetchAll(ctx context.Context, roster []string, settle func(Outcome)) []Outcome {
	if s.provider == nil {
		log.Printf("ERROR: no weather provider configured; skipping %d cities", len(roster))
		return nil
	}

	results := make(chan Outcome, len(roster))
	for _, city := range roster {
		city := city
		go func() {
			start := time.Now()
			r, err := s.fetchOne(ctx, city)
			results <- Outcome{
				City:     city,
				Reading:  r,
				Err:      err,
				Duration: time.Since(start),
			}
		}()
	}

	outcomes := make([]Outcome, 0, len(roster))
	for range roster {
		o := <-results
		if o.Err != nil {
			log.Printf("ERROR: fetching weather for %s: %v", o.City, o.Err)
		} else if s.store != nil {
			s.store.SaveReading(o.Reading)
		}
		if settle != nil {
			settle(o)
		}
		outcomes = append(outcomes, o)
	}

	return outcomes
}

// fetchOne isolates a single city so that a panic in the provider cannot take
// down the whole batch.
func (s *Service) fetchOne(ctx context.Context, city string) (r Reading, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider %s panicked for %s: %v", s.provider.Name(), city, rec)
		}
	}()
	return s.provider.Fetch(ctx, city)
}

// GetLatest returns the most recent stored reading for a city.
func (s *Service) GetLatest(city string) (Reading, error) {
	if s.store == nil {
		return Reading{}, errors.New("no history store configured")
	}
	return s.store.GetLatest(city)
}

// GetRange returns stored readings for a city between from and to (inclusive).
func (s *Service) GetRange(city string, from, to time.Time) ([]Reading, error) {
	if s.store == nil {
		return nil, errors.New("no history store configured")
	}
	return s.store.GetRange(city, from, to)
}
