// Package chartdata projects history snapshots into the chart-ready
// datasets consumed by the rendering layer. Rendering itself lives
// outside this system; only the data products are built here.
package chartdata

import (
	"math"
	"sort"
	"time"

	mstats "github.com/montanaflynn/stats"

	"envirostream/anomaly"
	"envirostream/telemetry"
)

// Dataset is everything the external chart layer needs for one render
// pass: aligned per-metric series, deterministic status counts, a
// Pearson correlation matrix, and the anomaly highlights.
type Dataset struct {
	Timestamps  []time.Time      `json:"timestamps"`
	Temperature []float64        `json:"temperature"`
	Humidity    []float64        `json:"humidity"`
	Pressure    []float64        `json:"pressure"`
	Status      []StatusCount    `json:"status_counts"`
	Correlation Correlation      `json:"correlation"`
	Anomalies   []anomaly.Record `json:"anomalies"`
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Correlation is a symmetric matrix over the numeric fields, in the
// order given by Fields.
type Correlation struct {
	Fields []string    `json:"fields"`
	Matrix [][]float64 `json:"matrix"`
}

// Build projects a snapshot plus its anomaly list into a Dataset.
// An empty snapshot yields empty slices, never nil maps or errors.
func Build(readings []telemetry.Reading, anomalies []anomaly.Record) Dataset {
	d := Dataset{
		Timestamps:  make([]time.Time, len(readings)),
		Temperature: make([]float64, len(readings)),
		Humidity:    make([]float64, len(readings)),
		Pressure:    make([]float64, len(readings)),
		Anomalies:   anomalies,
	}
	if d.Anomalies == nil {
		d.Anomalies = []anomaly.Record{}
	}

	counts := make(map[string]int)
	for i, r := range readings {
		d.Timestamps[i] = r.Timestamp
		d.Temperature[i] = r.Temperature
		d.Humidity[i] = r.Humidity
		d.Pressure[i] = r.Pressure
		counts[string(r.Status)]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	d.Status = make([]StatusCount, 0, len(labels))
	for _, label := range labels {
		d.Status = append(d.Status, StatusCount{Status: label, Count: counts[label]})
	}

	d.Correlation = correlate([][]float64{d.Temperature, d.Humidity, d.Pressure},
		[]string{"temperature", "humidity", "pressure"})
	return d
}

func correlate(series [][]float64, fields []string) Correlation {
	c := Correlation{Fields: fields, Matrix: make([][]float64, len(series))}
	for i := range series {
		c.Matrix[i] = make([]float64, len(series))
		for j := range series {
			if i == j {
				c.Matrix[i][j] = 1.0
				continue
			}
			r, err := mstats.Pearson(series[i], series[j])
			if err != nil || math.IsNaN(r) {
				r = 0
			}
			c.Matrix[i][j] = r
		}
	}
	return c
}
