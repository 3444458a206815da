package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"envirostream/telemetry"
)

func window(temps ...float64) []telemetry.Reading {
	out := make([]telemetry.Reading, len(temps))
	for i, temp := range temps {
		out[i] = telemetry.Reading{
			Timestamp:   time.Unix(int64(1700000000+i), 0),
			Temperature: temp,
			Humidity:    45.0,
			Pressure:    1015.0,
			Status:      telemetry.StatusNormal,
		}
	}
	return out
}

func TestDetectInsufficientSamples(t *testing.T) {
	readings := window(1, 2, 3, 4, 5, 6, 7, 8, 100)
	require.Len(t, readings, 9)
	require.Empty(t, Detect(readings, FieldTemperature, DefaultThreshold))
}

func TestDetectSingleOutlier(t *testing.T) {
	temps := make([]float64, 20)
	for i := range temps {
		temps[i] = 20.0
	}
	temps[7] = 40.0
	readings := window(temps...)

	records := Detect(readings, FieldTemperature, DefaultThreshold)
	require.Len(t, records, 1)
	require.Equal(t, 40.0, records[0].Value)
	require.Equal(t, readings[7].Timestamp, records[0].Timestamp)
	require.Greater(t, records[0].ZScore, DefaultThreshold)
}

func TestDetectDegenerateVariance(t *testing.T) {
	temps := make([]float64, 20)
	for i := range temps {
		temps[i] = 22.0
	}
	require.Empty(t, Detect(window(temps...), FieldTemperature, DefaultThreshold))
}

func TestDetectOrderedByTimestamp(t *testing.T) {
	temps := make([]float64, 30)
	for i := range temps {
		temps[i] = 20.0
	}
	temps[25] = 60.0
	temps[3] = -20.0
	records := Detect(window(temps...), FieldTemperature, DefaultThreshold)

	require.Len(t, records, 2)
	require.True(t, records[0].Timestamp.Before(records[1].Timestamp))
	require.Equal(t, -20.0, records[0].Value)
	require.Equal(t, 60.0, records[1].Value)
	require.Negative(t, records[0].ZScore)
}

func TestDetectFieldSelection(t *testing.T) {
	readings := window(make([]float64, 15)...)
	for i := range readings {
		readings[i].Humidity = 45.0
	}
	readings[4].Humidity = 95.0

	records := Detect(readings, FieldHumidity, DefaultThreshold)
	require.Len(t, records, 1)
	require.Equal(t, 95.0, records[0].Value)

	// Temperature is flat, so the default field flags nothing.
	require.Empty(t, Detect(readings, FieldTemperature, DefaultThreshold))
}

func TestParseField(t *testing.T) {
	require.Equal(t, FieldTemperature, ParseField(""))
	require.Equal(t, FieldTemperature, ParseField("bogus"))
	require.Equal(t, FieldHumidity, ParseField("humidity"))
	require.Equal(t, FieldPressure, ParseField("pressure"))
}
