// Package param hands control values from UI or CLI goroutines to the audio
// goroutine without locks.
//
// Every [Value] stores its float64 bits in an atomic word, and [Flag] wraps
// an atomic bool. The audio side reads a consistent-enough view once per
// block through [Controls.Snapshot]. Both types implement flag.Value so a
// command line can bind them directly.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
)

// Value is a bounded float64 parameter safe for concurrent use.
type Value struct {
	name string
	unit string
	min  float64
	max  float64
	def  float64
	bits atomic.Uint64
}

// NewValue returns a parameter holding def. def must lie in [lo, hi].
func NewValue(name, unit string, lo, hi, def float64) (*Value, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || hi < lo {
		return nil, fmt.Errorf("param %s range invalid: [%f, %f]", name, lo, hi)
	}
	if math.IsNaN(def) || def < lo || def > hi {
		return nil, fmt.Errorf("param %s default must be in [%f, %f]: %f", name, lo, hi, def)
	}

	v := &Value{name: name, unit: unit, min: lo, max: hi, def: def}
	v.bits.Store(math.Float64bits(def))
	return v, nil
}

func mustValue(name, unit string, lo, hi, def float64) *Value {
	v, err := NewValue(name, unit, lo, hi, def)
	if err != nil {
		panic(err)
	}
	return v
}

// Name returns the parameter name.
func (v *Value) Name() string { return v.name }

// Unit returns the display unit, possibly empty.
func (v *Value) Unit() string { return v.unit }

// Min returns the lower bound.
func (v *Value) Min() float64 { return v.min }

// Max returns the upper bound.
func (v *Value) Max() float64 { return v.max }

// Default returns the initial value.
func (v *Value) Default() float64 { return v.def }

// Load returns the current value.
func (v *Value) Load() float64 {
	return math.Float64frombits(v.bits.Load())
}

// Int returns the current value rounded to the nearest integer.
func (v *Value) Int() int {
	return int(math.Round(v.Load()))
}

// Store sets the value clamped to [Min, Max]. NaN is ignored.
func (v *Value) Store(x float64) {
	if math.IsNaN(x) {
		return
	}
	v.bits.Store(math.Float64bits(core.Clamp(x, v.min, v.max)))
}

// Normalized returns the value mapped to [0, 1].
func (v *Value) Normalized() float64 {
	if v.max <= v.min {
		return 0
	}
	return (v.Load() - v.min) / (v.max - v.min)
}

// SetNormalized stores min + n·(max−min), n clamped to [0, 1].
func (v *Value) SetNormalized(n float64) {
	v.Store(v.min + core.Clamp(n, 0, 1)*(v.max-v.min))
}

// Reset restores the default.
func (v *Value) Reset() { v.Store(v.def) }

// String formats the current value.
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(v.Load(), 'g', -1, 64)
}

// Set parses s and stores it. Values outside the range are rejected rather
// than clamped so that typos on a command line surface.
func (v *Value) Set(s string) error {
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("param %s: %w", v.name, err)
	}
	if math.IsNaN(x) || x < v.min || x > v.max {
		return fmt.Errorf("param %s must be in [%g, %g]: %s", v.name, v.min, v.max, s)
	}
	v.Store(x)
	return nil
}

// Flag is an on/off parameter safe for concurrent use.
type Flag struct {
	name string
	on   atomic.Bool
}

// NewFlag returns a flag holding def.
func NewFlag(name string, def bool) *Flag {
	f := &Flag{name: name}
	f.on.Store(def)
	return f
}

// Name returns the flag name.
func (f *Flag) Name() string { return f.name }

// Load reports whether the flag is set.
func (f *Flag) Load() bool { return f.on.Load() }

// Store sets the flag.
func (f *Flag) Store(on bool) { f.on.Store(on) }

// Toggle flips the flag and returns the new state.
func (f *Flag) Toggle() bool {
	for {
		old := f.on.Load()
		if f.on.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// String formats the flag.
func (f *Flag) String() string {
	if f == nil {
		return "false"
	}
	return strconv.FormatBool(f.Load())
}

// Set parses s as a bool.
func (f *Flag) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("param %s: %w", f.name, err)
	}
	f.Store(on)
	return nil
}

// IsBoolFlag lets the flag package accept "-name" without a value.
func (f *Flag) IsBoolFlag() bool { return true }
