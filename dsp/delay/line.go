package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
	"github.com/cwbudde/algo-blockdsp/dsp/interp"
)

// DefaultCapacity is the maximum delay in samples of a default line
// (two seconds at 48 kHz).
const DefaultCapacity = 96000

// ErrDelayOutOfRange is returned by PopChecked for delays outside [0, Len()).
var ErrDelayOutOfRange = errors.New("delay: delay out of range")

// Line is a circular delay line.
type Line struct {
	buffer    []float64
	writeIdx  int
	readIdx   int
	pushCount uint64
}

// New returns a delay line of fixed capacity.
func New(capacity int) (*Line, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("delay capacity must be > 0: %d", capacity)
	}
	return &Line{buffer: make([]float64, capacity)}, nil
}

// Len returns the capacity in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// WriteIndex returns the slot the next Push overwrites.
func (d *Line) WriteIndex() int { return d.writeIdx }

// ReadIndex returns the slot resolved by the most recent Pop.
func (d *Line) ReadIndex() int { return d.readIdx }

// Pushed returns the number of samples written since construction or Reset.
func (d *Line) Pushed() uint64 { return d.pushCount }

// Push writes one sample and advances the write cursor.
func (d *Line) Push(sample float64) {
	d.buffer[d.writeIdx] = sample
	d.writeIdx++
	if d.writeIdx >= len(d.buffer) {
		d.writeIdx = 0
	}
	d.pushCount++
}

// Pop returns the sample pushed delay samples ago: Pop(1) is the most
// recent sample, Pop(Len()) the oldest one still stored.
//
// delay is taken modulo Len(), so out-of-range values (including negative
// ones) alias to a shorter delay. Pop(0) and Pop(Len()) address the same slot.
func (d *Line) Pop(delay int) float64 {
	size := len(d.buffer)
	r := (d.writeIdx - delay) % size
	if r < 0 {
		r += size
	}
	d.readIdx = r
	return d.buffer[r]
}

// PopChecked is Pop without aliasing: delays outside [0, Len()) return
// ErrDelayOutOfRange.
func (d *Line) PopChecked(delay int) (float64, error) {
	if delay < 0 || delay >= len(d.buffer) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrDelayOutOfRange, delay, len(d.buffer))
	}
	return d.Pop(delay), nil
}

// ReadFractional reads a non-integer delay using the given interpolation.
// The delay is clamped to [1, Len()-3], the range the interpolators can
// serve without touching the slot the next Push overwrites.
func (d *Line) ReadFractional(delay float64, mode interp.Mode) float64 {
	size := len(d.buffer)
	if delay < 1 || math.IsNaN(delay) {
		delay = 1
	}
	maxDelay := float64(max(size-3, 1))
	if delay > maxDelay {
		delay = maxDelay
	}

	switch mode {
	case interp.ModeLinear:
		p := int(math.Floor(delay))
		return interp.Linear2(delay-float64(p), d.Pop(p), d.Pop(p+1))
	case interp.ModeHermite:
		p := int(math.Floor(delay))
		x0 := d.Pop(p)
		x1 := d.Pop(p + 1)
		x2 := d.Pop(p + 2)
		// Nothing newer than Pop(1) exists; extrapolate the missing neighbour.
		xm1 := 2*x0 - x1
		if p > 1 {
			xm1 = d.Pop(p - 1)
		}
		return interp.Hermite4(delay-float64(p), xm1, x0, x1, x2)
	default:
		return d.Pop(int(math.Round(delay)))
	}
}

// Reset clears line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writeIdx = 0
	d.readIdx = 0
	d.pushCount = 0
}
