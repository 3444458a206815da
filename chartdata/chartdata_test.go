package chartdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"envirostream/anomaly"
	"envirostream/telemetry"
)

func readings() []telemetry.Reading {
	out := make([]telemetry.Reading, 6)
	statuses := []telemetry.Status{
		telemetry.StatusWarning, telemetry.StatusNormal, telemetry.StatusNormal,
		telemetry.StatusCritical, telemetry.StatusNormal, telemetry.StatusWarning,
	}
	for i := range out {
		out[i] = telemetry.Reading{
			Timestamp:   time.Unix(int64(1700000000+i*3), 0),
			Temperature: 20.0 + float64(i),
			Humidity:    60.0 - float64(i),
			Pressure:    1010.0,
			Status:      statuses[i],
		}
	}
	return out
}

func TestBuildSeries(t *testing.T) {
	d := Build(readings(), nil)

	require.Len(t, d.Timestamps, 6)
	require.Len(t, d.Temperature, 6)
	require.Len(t, d.Humidity, 6)
	require.Len(t, d.Pressure, 6)
	require.Equal(t, 20.0, d.Temperature[0])
	require.Equal(t, 55.0, d.Humidity[5])
	require.NotNil(t, d.Anomalies)
	require.Empty(t, d.Anomalies)
}

func TestBuildStatusCountsSorted(t *testing.T) {
	d := Build(readings(), nil)
	require.Equal(t, []StatusCount{
		{Status: "critical", Count: 1},
		{Status: "normal", Count: 3},
		{Status: "warning", Count: 2},
	}, d.Status)
}

func TestBuildCorrelation(t *testing.T) {
	d := Build(readings(), nil)
	require.Equal(t, []string{"temperature", "humidity", "pressure"}, d.Correlation.Fields)
	require.Len(t, d.Correlation.Matrix, 3)

	// Diagonal is exactly 1.
	for i := 0; i < 3; i++ {
		require.Equal(t, 1.0, d.Correlation.Matrix[i][i])
	}
	// Temperature rises while humidity falls one-for-one.
	require.InDelta(t, -1.0, d.Correlation.Matrix[0][1], 1e-9)
	require.InDelta(t, d.Correlation.Matrix[0][1], d.Correlation.Matrix[1][0], 1e-9)
	// Pressure is constant, so its correlation is undefined and pinned to 0.
	require.Zero(t, d.Correlation.Matrix[0][2])
}

func TestBuildEmpty(t *testing.T) {
	d := Build(nil, nil)
	require.Empty(t, d.Timestamps)
	require.Empty(t, d.Status)
	require.NotNil(t, d.Anomalies)
}

func TestBuildCarriesAnomalies(t *testing.T) {
	records := []anomaly.Record{{Timestamp: time.Unix(1700000000, 0), Value: 40.0, ZScore: 3.2}}
	d := Build(readings(), records)
	require.Equal(t, records, d.Anomalies)
}
