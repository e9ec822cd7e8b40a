// Package scope provides a rolling sample history for waveform displays.
//
// The audio callback writes into a [Buffer]; a rendering goroutine reads it
// at its own pace. Every cell and the write cursor are atomics, so neither
// side ever waits on the other. A reader racing the writer may see a window
// that straddles one write, never a torn sample.
package scope

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
)

// DefaultSize holds one second of audio at 44.1 kHz.
const DefaultSize = 44100

// Buffer is a fixed-length history with oldest-first read access.
type Buffer struct {
	cells   []atomic.Uint64
	written atomic.Uint64
}

// New returns a zero-filled history of size samples.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("scope size must be > 0: %d", size)
	}
	return &Buffer{cells: make([]atomic.Uint64, size)}, nil
}

// Len returns the history length.
func (b *Buffer) Len() int { return len(b.cells) }

// Written returns the number of samples written so far.
func (b *Buffer) Written() uint64 { return b.written.Load() }

// WriteSample appends x, dropping the oldest sample.
func (b *Buffer) WriteSample(x float64) {
	n := b.written.Load()
	b.cells[n%uint64(len(b.cells))].Store(math.Float64bits(x))
	b.written.Store(n + 1)
}

// Write appends every sample of block in order.
func (b *Buffer) Write(block []float64) {
	for _, x := range block {
		b.WriteSample(x)
	}
}

// ReadSample returns the sample at position i of the window, 0 being the
// oldest and Len()-1 the newest. Out-of-range positions read as 0.
func (b *Buffer) ReadSample(i int) float64 {
	size := len(b.cells)
	if i < 0 || i >= size {
		return 0
	}
	start := b.written.Load() % uint64(size)
	idx := (start + uint64(i)) % uint64(size)
	return math.Float64frombits(b.cells[idx].Load())
}

// Snapshot copies the chronological window into dst, reusing its capacity,
// and returns the filled slice.
func (b *Buffer) Snapshot(dst []float64) []float64 {
	size := len(b.cells)
	dst = core.EnsureLen(dst, size)

	start := int(b.written.Load() % uint64(size))
	for i := range dst {
		idx := start + i
		if idx >= size {
			idx -= size
		}
		dst[i] = math.Float64frombits(b.cells[idx].Load())
	}
	return dst
}

// Latest copies the newest len(dst) samples into dst, oldest first.
// dst longer than the history is filled up to Len().
func (b *Buffer) Latest(dst []float64) []float64 {
	size := len(b.cells)
	n := min(len(dst), size)
	dst = dst[:n]

	end := b.written.Load()
	for i := range dst {
		pos := (end + uint64(size) - uint64(n) + uint64(i)) % uint64(size)
		dst[i] = math.Float64frombits(b.cells[pos].Load())
	}
	return dst
}

// Reset clears the history.
func (b *Buffer) Reset() {
	for i := range b.cells {
		b.cells[i].Store(0)
	}
	b.written.Store(0)
}
