// Package storage provides the bounded in-memory history of sensor
// readings. One writer and any number of readers may use a Buffer
// concurrently.
package storage

import (
	"sync"
	"time"

	"envirostream/telemetry"
)

// DefaultCapacity matches the dashboard's retention window.
const DefaultCapacity = 100

// Buffer is a fixed-capacity ring of readings in chronological order.
// Once full, each append evicts the oldest entry.
type Buffer struct {
	mu       sync.RWMutex
	data     []telemetry.Reading
	head     int
	size     int
	capacity int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		data:     make([]telemetry.Reading, capacity),
		capacity: capacity,
	}
}

// Append inserts a reading at the chronological tail, evicting the
// oldest entry when the buffer is full. It never fails.
func (b *Buffer) Append(r telemetry.Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data[b.head] = r
	b.head = (b.head + 1) % b.capacity
	if b.size < b.capacity {
		b.size++
	}
}

// Snapshot returns a point-in-time copy of the buffer contents, oldest
// first. Callers may keep or mutate the result freely.
func (b *Buffer) Snapshot() []telemetry.Reading {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]telemetry.Reading, b.size)
	start := (b.head - b.size + b.capacity) % b.capacity
	for i := 0; i < b.size; i++ {
		out[i] = b.data[(start+i)%b.capacity]
	}
	return out
}

// Latest returns the most recent reading. The second return value is
// false when the buffer is empty.
func (b *Buffer) Latest() (telemetry.Reading, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.size == 0 {
		return telemetry.Reading{}, false
	}
	return b.data[(b.head-1+b.capacity)%b.capacity], true
}

func (b *Buffer) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

func (b *Buffer) Capacity() int {
	return b.capacity
}

// Stats reports occupancy and the covered time span, for the health
// and metrics surfaces.
func (b *Buffer) Stats() map[string]interface{} {
	b.mu.RLock()
	defer b.mu.RUnlock()

	oldest := time.Time{}
	newest := time.Time{}
	if b.size > 0 {
		oldestIdx := (b.head - b.size + b.capacity) % b.capacity
		oldest = b.data[oldestIdx].Timestamp
		newestIdx := (b.head - 1 + b.capacity) % b.capacity
		newest = b.data[newestIdx].Timestamp
	}

	return map[string]interface{}{
		"size":              b.size,
		"capacity":          b.capacity,
		"utilization":       float64(b.size) / float64(b.capacity) * 100.0,
		"oldest_timestamp":  oldest,
		"newest_timestamp":  newest,
		"time_span_seconds": newest.Sub(oldest).Seconds(),
	}
}
