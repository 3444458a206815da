// Package stats derives statistical summaries from history snapshots.
// Summaries are always recomputed from the snapshot they are given and
// never cached across buffer mutations.
package stats

import (
	mstats "github.com/montanaflynn/stats"

	"envirostream/telemetry"
)

// Summary holds per-metric mean and sample standard deviation plus a
// count per status category. All values are zero for an empty
// snapshot; callers check emptiness via len(StatusCounts).
type Summary struct {
	TempMean     float64        `json:"temp_mean"`
	TempStd      float64        `json:"temp_std"`
	HumidityMean float64        `json:"humidity_mean"`
	HumidityStd  float64        `json:"humidity_std"`
	PressureMean float64        `json:"pressure_mean"`
	PressureStd  float64        `json:"pressure_std"`
	StatusCounts map[string]int `json:"status_counts"`
}

// Summarize computes the summary over a snapshot. Standard deviation
// uses the n-1 denominator and is defined as 0 when n <= 1.
func Summarize(readings []telemetry.Reading) Summary {
	s := Summary{StatusCounts: make(map[string]int)}
	if len(readings) == 0 {
		return s
	}

	temps := make([]float64, len(readings))
	hums := make([]float64, len(readings))
	press := make([]float64, len(readings))
	for i, r := range readings {
		temps[i] = r.Temperature
		hums[i] = r.Humidity
		press[i] = r.Pressure
		s.StatusCounts[string(r.Status)]++
	}

	s.TempMean, s.TempStd = meanStd(temps)
	s.HumidityMean, s.HumidityStd = meanStd(hums)
	s.PressureMean, s.PressureStd = meanStd(press)
	return s
}

func meanStd(values []float64) (float64, float64) {
	mean, err := mstats.Mean(values)
	if err != nil {
		return 0, 0
	}
	if len(values) <= 1 {
		return mean, 0
	}
	std, err := mstats.StandardDeviationSample(values)
	if err != nil {
		return mean, 0
	}
	return mean, std
}
