// Package anomaly flags readings whose deviation from the current
// window's mean exceeds a z-score threshold.
package anomaly

import (
	"math"
	"time"

	mstats "github.com/montanaflynn/stats"

	"envirostream/telemetry"
)

const (
	// DefaultThreshold is the |z| cutoff above which a reading is
	// flagged.
	DefaultThreshold = 2.0

	// MinSamples is the smallest window that produces any result.
	// Below it Detect returns an empty list, not an error.
	MinSamples = 10
)

// Field selects which numeric metric is analyzed.
type Field string

const (
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldPressure    Field = "pressure"
)

// ParseField maps a request parameter to a Field, defaulting to
// temperature for empty or unknown input.
func ParseField(s string) Field {
	switch Field(s) {
	case FieldHumidity:
		return FieldHumidity
	case FieldPressure:
		return FieldPressure
	}
	return FieldTemperature
}

func (f Field) value(r telemetry.Reading) float64 {
	switch f {
	case FieldHumidity:
		return r.Humidity
	case FieldPressure:
		return r.Pressure
	}
	return r.Temperature
}

// Record is one flagged reading. The value slot keeps the wire name of
// the default field regardless of which metric was analyzed.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"temperature"`
	ZScore    float64   `json:"z_score"`
}

// Detect returns the readings whose z-score against the snapshot's own
// mean and sample standard deviation exceeds the threshold, ordered by
// timestamp ascending. Fewer than MinSamples readings, or a window with
// zero variance, yields an empty result.
func Detect(readings []telemetry.Reading, field Field, threshold float64) []Record {
	if len(readings) < MinSamples {
		return []Record{}
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = field.value(r)
	}

	mean, err := mstats.Mean(values)
	if err != nil {
		return []Record{}
	}
	std, err := mstats.StandardDeviationSample(values)
	if err != nil || std == 0 {
		// Degenerate variance: z-score is undefined, nothing is flagged.
		return []Record{}
	}

	out := []Record{}
	for i, r := range readings {
		z := (values[i] - mean) / std
		if math.Abs(z) > threshold {
			out = append(out, Record{
				Timestamp: r.Timestamp,
				Value:     values[i],
				ZScore:    z,
			})
		}
	}
	return out
}
