package store

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given city.
	ErrNotFound = errors.New("no weather data for city")
)

// ReadingHistory holds a time-ordered list of readings for a city.
type ReadingHistory struct {
	Readings []weather.Reading
}

// MemoryStore is a concurrency-safe in-memory history of readings.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized city name
	data map[string]*ReadingHistory

	maxHistory int           // max number of readings per city
	maxAge     time.Duration // optional max age for readings

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*ReadingHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func cityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// SaveReading appends a reading for its city and enforces retention.
func (s *MemoryStore) SaveReading(reading weather.Reading) {
	key := cityKey(reading.City)

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &ReadingHistory{}
		s.data[key] = history
	}

	history.Readings = append(history.Readings, reading)

	if s.maxHistory > 0 && len(history.Readings) > s.maxHistory {
		over := len(history.Readings) - s.maxHistory
		history.Readings = history.Readings[over:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Readings); i++ {
			if !history.Readings[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		history.Readings = history.Readings[i:]
	}
}

// GetLatest returns the most recent reading for a city.
func (s *MemoryStore) GetLatest(city string) (weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[cityKey(city)]
	if !ok || len(history.Readings) == 0 {
		return weather.Reading{}, ErrNotFound
	}
	return history.Readings[len(history.Readings)-1], nil
}

// GetRange returns all readings for a city between from and to (inclusive).
func (s *MemoryStore) GetRange(city string, from, to time.Time) ([]weather.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[cityKey(city)]
	if !ok || len(history.Readings) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Reading
	for _, r := range history.Readings {
		if !r.FetchedAt.Before(from) && !r.FetchedAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
