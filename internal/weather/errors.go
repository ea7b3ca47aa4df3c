package weather

import (
	"fmt"
)

// FetchError is returned when the upstream answers with a non-success status.
type FetchError struct {
	City       string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("weather data not available for %s: status %d", e.City, e.StatusCode)
}

// DecodeError is returned when the upstream body is malformed or misses
// a field the dashboard needs.
type DecodeError struct {
	City string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode weather for %s: %v", e.City, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
