package meeting

import (
	"encoding/json"
	"math"

	"meeting_cost_tui/internal/storage"
)

// Storage keys. The values are kept compatible with earlier releases so
// existing data survives upgrades.
const (
	configKey  = "mcc-config"
	meetingKey = "mcc-meeting"
)

// Config holds the billing rates and the day-length divisor used to convert
// people-hours into people-days.
type Config struct {
	Group1HourlyRate   float64 `json:"group1HourlyRate"`
	Group2HourlyRate   float64 `json:"group2HourlyRate"`
	WorkingHoursPerDay float64 `json:"workingHoursPerDay"`
}

// DefaultConfig returns the first-run configuration.
func DefaultConfig() Config {
	return Config{
		Group1HourlyRate:   0,
		Group2HourlyRate:   0,
		WorkingHoursPerDay: 8,
	}
}

// ConfigPatch is a partial Config; nil fields are left unchanged by
// UpdateConfig.
type ConfigPatch struct {
	Group1HourlyRate   *float64
	Group2HourlyRate   *float64
	WorkingHoursPerDay *float64
}

// Limits bound the configuration fields.
type Limits struct {
	MinHourlyRate   float64
	MaxHourlyRate   float64
	MinWorkingHours float64
	MaxWorkingHours float64
}

// DefaultLimits returns the documented configuration bounds.
func DefaultLimits() Limits {
	return Limits{
		MinHourlyRate:   0,
		MaxHourlyRate:   999,
		MinWorkingHours: 4,
		MaxWorkingHours: 12,
	}
}

// clamped returns c with every field forced into l's bounds.
func (c Config) clamped(l Limits) Config {
	return Config{
		Group1HourlyRate:   clampFloat(c.Group1HourlyRate, l.MinHourlyRate, l.MaxHourlyRate),
		Group2HourlyRate:   clampFloat(c.Group2HourlyRate, l.MinHourlyRate, l.MaxHourlyRate),
		WorkingHoursPerDay: clampFloat(c.WorkingHoursPerDay, l.MinWorkingHours, l.MaxWorkingHours),
	}
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// loadConfig reads the persisted configuration. It returns false if the key
// is absent, the JSON is malformed, or any required field is missing or not
// a finite number. It never fails the caller.
func loadConfig(kv *storage.Safe) (Config, bool) {
	raw, ok := kv.Get(configKey)
	if !ok {
		return Config{}, false
	}

	var rec struct {
		Group1HourlyRate   *float64 `json:"group1HourlyRate"`
		Group2HourlyRate   *float64 `json:"group2HourlyRate"`
		WorkingHoursPerDay *float64 `json:"workingHoursPerDay"`
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Config{}, false
	}
	if rec.Group1HourlyRate == nil || rec.Group2HourlyRate == nil || rec.WorkingHoursPerDay == nil {
		return Config{}, false
	}
	// JSON cannot carry NaN, but the guard keeps this total if the backend
	// is ever written by something more permissive.
	if math.IsNaN(*rec.Group1HourlyRate) || math.IsNaN(*rec.Group2HourlyRate) || math.IsNaN(*rec.WorkingHoursPerDay) {
		return Config{}, false
	}

	return Config{
		Group1HourlyRate:   *rec.Group1HourlyRate,
		Group2HourlyRate:   *rec.Group2HourlyRate,
		WorkingHoursPerDay: *rec.WorkingHoursPerDay,
	}, true
}

// saveConfig writes the configuration. Failures are swallowed by the safe
// accessor; configuration persistence is best-effort.
func saveConfig(kv *storage.Safe, c Config) {
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	kv.Set(configKey, string(data))
}
