// Package snapshot shapes raw provider data into the canonical per-period
// forecast records the rest of the pipeline consumes.
package snapshot

import (
	"sort"
	"time"

	"github.com/ayane-k/soracast/internal/models"
	"github.com/ayane-k/soracast/internal/provider"
)

// DefaultOffsets are the fixed forecast hours per day.
var DefaultOffsets = []int{9, 12, 15, 18}

// DefaultBoundaryHour controls the day-boundary rule: before this hour
// "today" means the current calendar day, at or after it "today" rolls over
// to the next calendar day.
const DefaultBoundaryHour = 6

// Builder produces WeatherSnapshots from raw hourly provider data.
// It is a pure transform: no I/O, no side effects.
type Builder struct {
	Offsets      []int
	BoundaryHour int
	Loc          *time.Location
}

// NewBuilder creates a builder with the default offsets and boundary hour.
func NewBuilder(loc *time.Location) *Builder {
	return &Builder{
		Offsets:      DefaultOffsets,
		BoundaryHour: DefaultBoundaryHour,
		Loc:          loc,
	}
}

// TargetDate applies the boundary rule to a wall-clock time: late-night
// requests still refer to the day that is ending, everything at or after the
// boundary refers to the day ahead.
func (b *Builder) TargetDate(now time.Time) time.Time {
	local := now.In(b.Loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, b.Loc)
	if local.Hour() >= b.BoundaryHour {
		return day.AddDate(0, 0, 1)
	}
	return day
}

// Build produces a snapshot for location/date from raw hourly points. Every
// configured offset must be present in hours; a missing offset returns an
// IncompleteForecastError and no snapshot.
func (b *Builder) Build(location string, date time.Time, hours []provider.HourPoint) (*models.Snapshot, error) {
	day := date.In(b.Loc)
	byHour := make(map[int]provider.HourPoint, len(hours))
	for _, h := range hours {
		local := h.Time.In(b.Loc)
		if local.Year() == day.Year() && local.Month() == day.Month() && local.Day() == day.Day() {
			byHour[local.Hour()] = h
		}
	}

	var missing []int
	periods := make([]models.PeriodForecast, 0, len(b.Offsets))
	for _, offset := range b.Offsets {
		h, ok := byHour[offset]
		if !ok {
			missing = append(missing, offset)
			continue
		}
		periods = append(periods, models.PeriodForecast{
			Timestamp:    time.Date(day.Year(), day.Month(), day.Day(), offset, 0, 0, 0, b.Loc),
			TemperatureC: h.TemperatureC,
			PrecipMMPerH: h.PrecipMMPerH,
			Condition:    ConditionFromWMOCode(h.WeatherCode),
			WindSpeedMS:  h.WindSpeedMS,
			HumidityPct:  h.HumidityPct,
		})
	}
	if len(missing) > 0 {
		return nil, &models.IncompleteForecastError{Location: location, MissingOffsets: missing}
	}

	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Timestamp.Before(periods[j].Timestamp)
	})

	return &models.Snapshot{
		Location: location,
		Date:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, b.Loc),
		Periods:  periods,
	}, nil
}

// ConditionFromWMOCode maps a WMO weather interpretation code to the closed
// condition enum. Unrecognized codes become ConditionUnknown rather than
// passing through.
func ConditionFromWMOCode(code int) models.Condition {
	switch {
	case code == 0 || code == 1:
		return models.ConditionSunny
	case code == 2 || code == 3:
		return models.ConditionCloudy
	case code == 45 || code == 48:
		return models.ConditionFoggy
	case code >= 51 && code <= 57: // drizzle
		return models.ConditionRainy
	case code >= 61 && code <= 67: // rain
		return models.ConditionRainy
	case code >= 71 && code <= 77: // snow
		return models.ConditionSnowy
	case code >= 80 && code <= 82: // rain showers
		return models.ConditionRainy
	case code == 85 || code == 86: // snow showers
		return models.ConditionSnowy
	case code >= 95 && code <= 99: // thunderstorm
		return models.ConditionStormy
	default:
		return models.ConditionUnknown
	}
}
