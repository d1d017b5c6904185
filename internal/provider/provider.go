// Package provider fetches raw forecast data from upstream weather APIs.
package provider

import (
	"context"
	"time"
)

// HourPoint is one raw hourly forecast value from a provider, before it is
// shaped into a snapshot period.
type HourPoint struct {
	Time         time.Time
	TemperatureC float64
	PrecipMMPerH float64
	WeatherCode  int
	WindSpeedMS  float64
	HumidityPct  int
}

// Client is the weather-provider collaborator contract: for a location and
// date it must return hourly values covering every fixed forecast offset.
// Missing coverage surfaces downstream as an IncompleteForecastError.
type Client interface {
	Name() string
	FetchHourly(ctx context.Context, lat, lon float64, date time.Time) ([]HourPoint, error)
}
