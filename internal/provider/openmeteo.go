package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/ayane-k/soracast/internal/httputil"
	"github.com/ayane-k/soracast/internal/metrics"
)

const defaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteo fetches hourly forecasts from the Open-Meteo API. Calls are
// retried with exponential backoff and guarded by a circuit breaker so a
// flapping upstream does not stall batch generation.
type OpenMeteo struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	loc     *time.Location
}

// NewOpenMeteo creates a client against the public Open-Meteo endpoint.
// Timestamps in the response are interpreted in loc.
func NewOpenMeteo(loc *time.Location) *OpenMeteo {
	return NewOpenMeteoWithURL(defaultOpenMeteoURL, loc)
}

// NewOpenMeteoWithURL creates a client against a custom endpoint, used by tests.
func NewOpenMeteoWithURL(baseURL string, loc *time.Location) *OpenMeteo {
	return &OpenMeteo{
		baseURL: baseURL,
		client:  httputil.NewClient(),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openmeteo",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		loc: loc,
	}
}

func (o *OpenMeteo) Name() string { return "openmeteo" }

type openMeteoResponse struct {
	Hourly struct {
		Time          []string  `json:"time"`
		Temperature2M []float64 `json:"temperature_2m"`
		Precipitation []float64 `json:"precipitation"`
		WeatherCode   []int     `json:"weather_code"`
		WindSpeed10M  []float64 `json:"wind_speed_10m"`
		Humidity2M    []int     `json:"relative_humidity_2m"`
	} `json:"hourly"`
}

// FetchHourly returns hourly forecast values for the calendar day of date.
func (o *OpenMeteo) FetchHourly(ctx context.Context, lat, lon float64, date time.Time) ([]HourPoint, error) {
	day := date.In(o.loc).Format("2006-01-02")

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.3f", lat))
	q.Set("longitude", fmt.Sprintf("%.3f", lon))
	q.Set("hourly", "temperature_2m,precipitation,weather_code,wind_speed_10m,relative_humidity_2m")
	q.Set("timezone", o.loc.String())
	q.Set("start_date", day)
	q.Set("end_date", day)
	q.Set("wind_speed_unit", "ms")
	reqURL := o.baseURL + "?" + q.Encode()

	start := time.Now()
	body, err := o.fetch(ctx, reqURL)
	metrics.ProviderAPILatency.WithLabelValues(o.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderAPICalls.WithLabelValues(o.Name(), "error").Inc()
		return nil, err
	}
	metrics.ProviderAPICalls.WithLabelValues(o.Name(), "ok").Inc()

	var data openMeteoResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	h := data.Hourly
	var points []HourPoint
	for i, raw := range h.Time {
		ts, err := time.ParseInLocation("2006-01-02T15:04", raw, o.loc)
		if err != nil {
			return nil, fmt.Errorf("parse hourly time %q: %w", raw, err)
		}
		p := HourPoint{Time: ts}
		if i < len(h.Temperature2M) {
			p.TemperatureC = h.Temperature2M[i]
		}
		if i < len(h.Precipitation) {
			p.PrecipMMPerH = h.Precipitation[i]
		}
		if i < len(h.WeatherCode) {
			p.WeatherCode = h.WeatherCode[i]
		}
		if i < len(h.WindSpeed10M) {
			p.WindSpeedMS = h.WindSpeed10M[i]
		}
		if i < len(h.Humidity2M) {
			p.HumidityPct = h.Humidity2M[i]
		}
		points = append(points, p)
	}
	return points, nil
}

func (o *OpenMeteo) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	var body []byte
	operation := func() error {
		result, err := o.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			resp, err := o.client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("fetch hourly: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return nil, fmt.Errorf("retryable status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return nil, backoff.Permanent(fmt.Errorf("fetch hourly: status %d: %s", resp.StatusCode, string(b)))
			}

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, backoff.Permanent(fmt.Errorf("read body: %w", err))
			}
			return b, nil
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		body = result.([]byte)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}
