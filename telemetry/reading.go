// Package telemetry defines the sensor reading value type shared by
// every stage of the pipeline.
package telemetry

import (
	"fmt"
	"time"
)

// Status is the categorical label attached to a reading.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Statuses lists all valid labels in alphabetical order.
var Statuses = []Status{StatusCritical, StatusNormal, StatusWarning}

// Declared valid ranges for synthetic generation and adapter
// data-quality checks.
const (
	TempMin     = 18.0
	TempMax     = 26.0
	HumidityMin = 30.0
	HumidityMax = 65.0
	PressureMin = 1000.0
	PressureMax = 1030.0
)

// Reading is a single timestamped sensor observation. It is immutable
// after creation; the history buffer owns its lifetime.
type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Status      Status    `json:"status"`
}

// ValidStatus reports whether s is one of the known labels.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNormal, StatusWarning, StatusCritical:
		return true
	}
	return false
}

// OutOfRange returns a description per numeric field that falls outside
// its declared valid range. A non-empty result is a data-quality flag,
// not an error: out-of-range readings are still accepted.
func (r Reading) OutOfRange() []string {
	var flags []string
	if r.Temperature < TempMin || r.Temperature > TempMax {
		flags = append(flags, fmt.Sprintf("temperature %.1f outside [%.1f, %.1f]", r.Temperature, TempMin, TempMax))
	}
	if r.Humidity < HumidityMin || r.Humidity > HumidityMax {
		flags = append(flags, fmt.Sprintf("humidity %.1f outside [%.1f, %.1f]", r.Humidity, HumidityMin, HumidityMax))
	}
	if r.Pressure < PressureMin || r.Pressure > PressureMax {
		flags = append(flags, fmt.Sprintf("pressure %.1f outside [%.1f, %.1f]", r.Pressure, PressureMin, PressureMax))
	}
	return flags
}
