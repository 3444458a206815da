// Package sensor produces readings, either synthetically or from a
// real sensor feed over MQTT.
package sensor

import (
	"math"
	"math/rand"
	"time"

	"envirostream/telemetry"
)

// Generator produces synthetic readings with every numeric field drawn
// independently and uniformly from its declared range. The status
// label is drawn uniformly as well, independent of the numeric fields.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededGenerator returns a deterministic generator for tests.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate produces one reading stamped with ts.
func (g *Generator) Generate(ts time.Time) telemetry.Reading {
	return telemetry.Reading{
		Timestamp:   ts,
		Temperature: g.uniform(telemetry.TempMin, telemetry.TempMax),
		Humidity:    g.uniform(telemetry.HumidityMin, telemetry.HumidityMax),
		Pressure:    g.uniform(telemetry.PressureMin, telemetry.PressureMax),
		Status:      telemetry.Statuses[g.rng.Intn(len(telemetry.Statuses))],
	}
}

// GenerateNow produces one reading stamped with the current time.
func (g *Generator) GenerateNow() telemetry.Reading {
	return g.Generate(time.Now())
}

// uniform draws from [min, max] rounded to one decimal, matching the
// precision real sensors report at.
func (g *Generator) uniform(min, max float64) float64 {
	v := min + g.rng.Float64()*(max-min)
	return math.Round(v*10) / 10
}
