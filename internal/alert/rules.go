package alert

import (
	"fmt"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Kind identifies which rule raised an alert.
type Kind string

const (
	KindHighTemperature Kind = "high_temperature"
	KindHighWind        Kind = "high_wind"
	KindSevereWeather   Kind = "severe_weather"
)

const (
	// TemperatureThreshold in °C; readings strictly above it alert.
	TemperatureThreshold = 35.0
	// WindSpeedThreshold in m/s; readings strictly above it alert.
	WindSpeedThreshold = 20.0
)

// severeConditions are matched exactly against the primary condition label.
var severeConditions = map[string]struct{}{
	"Thunderstorm": {},
	"Snow":         {},
	"Extreme":      {},
}

// Alert is one rendered entry of the alert list.
type Alert struct {
	City    string `json:"city"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Evaluate applies every rule to every snapshot. Rules are independent, so a
// single snapshot may raise up to three alerts.
func Evaluate(snapshots []weather.Snapshot) []Alert {
	var alerts []Alert
	for _, s := range snapshots {
		if s.Temperature > TemperatureThreshold {
			alerts = append(alerts, Alert{
				City:    s.City,
				Kind:    KindHighTemperature,
				Message: fmt.Sprintf("High temperature alert in %s: %s", s.City, common.Celsius(s.Temperature)),
			})
		}

		if s.WindSpeed > WindSpeedThreshold {
			alerts = append(alerts, Alert{
				City:    s.City,
				Kind:    KindHighWind,
				Message: fmt.Sprintf("High wind speed alert in %s: %s m/s", s.City, common.FormatNumber(s.WindSpeed)),
			})
		}

		if IsSevere(s.Description) {
			alerts = append(alerts, Alert{
				City:    s.City,
				Kind:    KindSevereWeather,
				Message: fmt.Sprintf("Severe weather alert in %s: %s", s.City, s.Description),
			})
		}
	}
	return alerts
}

// IsSevere reports whether the condition label is one of the severe ones.
// The match is case-sensitive.
func IsSevere(condition string) bool {
	_, ok := severeConditions[condition]
	return ok
}
