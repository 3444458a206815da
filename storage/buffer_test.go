package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"envirostream/telemetry"
)

func reading(i int) telemetry.Reading {
	return telemetry.Reading{
		Timestamp:   time.Unix(int64(1700000000+i), 0),
		Temperature: 20.0 + float64(i)*0.1,
		Humidity:    45.0,
		Pressure:    1015.0,
		Status:      telemetry.StatusNormal,
	}
}

func TestAppendNeverExceedsCapacity(t *testing.T) {
	b := NewBuffer(5)
	for i := 0; i < 12; i++ {
		b.Append(reading(i))
		require.LessOrEqual(t, b.Size(), 5)
	}

	snap := b.Snapshot()
	require.Len(t, snap, 5)
	// The survivors are exactly the 5 most recent, oldest first.
	for i, r := range snap {
		require.Equal(t, reading(7+i), r)
	}
}

func TestEvictionDropsOldest(t *testing.T) {
	b := NewBuffer(100)
	for i := 0; i < 100; i++ {
		b.Append(reading(i))
	}
	require.Equal(t, 100, b.Size())

	b.Append(reading(100))
	snap := b.Snapshot()
	require.Len(t, snap, 100)
	require.Equal(t, reading(1), snap[0])
	require.Equal(t, reading(100), snap[len(snap)-1])
	for _, r := range snap {
		require.NotEqual(t, reading(0).Timestamp, r.Timestamp)
	}
}

func TestSnapshotIdempotent(t *testing.T) {
	b := NewBuffer(10)
	for i := 0; i < 7; i++ {
		b.Append(reading(i))
	}
	require.Equal(t, b.Snapshot(), b.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	b := NewBuffer(10)
	b.Append(reading(0))
	snap := b.Snapshot()
	snap[0].Temperature = -100

	again := b.Snapshot()
	require.Equal(t, reading(0).Temperature, again[0].Temperature)
}

func TestLatest(t *testing.T) {
	b := NewBuffer(3)

	_, ok := b.Latest()
	require.False(t, ok)

	b.Append(reading(1))
	b.Append(reading(2))
	latest, ok := b.Latest()
	require.True(t, ok)
	require.Equal(t, reading(2), latest)
}

func TestStats(t *testing.T) {
	b := NewBuffer(10)
	b.Append(reading(0))
	b.Append(reading(6))

	stats := b.Stats()
	require.Equal(t, 2, stats["size"])
	require.Equal(t, 10, stats["capacity"])
	require.Equal(t, 6.0, stats["time_span_seconds"])
}
