package osc

import (
	"fmt"
	"math"
)

// Waveform selects the phase-to-amplitude mapping of an Oscillator.
type Waveform int

const (
	// Sine approximates sin(2πp − π) with a truncated Taylor series.
	Sine Waveform = iota
	// Saw maps phase linearly onto [-1, 1].
	Saw
	// Triangle folds the sawtooth into a symmetric ramp.
	Triangle
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Saw:
		return "saw"
	case Triangle:
		return "triangle"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

// ParseWaveform returns the waveform with the given name.
func ParseWaveform(name string) (Waveform, error) {
	switch name {
	case "sine":
		return Sine, nil
	case "saw", "sawtooth":
		return Saw, nil
	case "triangle", "tri":
		return Triangle, nil
	default:
		return 0, fmt.Errorf("unknown waveform: %q", name)
	}
}

func (w Waveform) valid() bool {
	return w >= Sine && w <= Triangle
}

type config struct {
	frequency float64
	sineOrder int
}

// Option configures oscillators and Poly engines.
type Option func(*config)

// WithFrequency sets the initial frequency in Hz.
func WithFrequency(freqHz float64) Option {
	return func(c *config) {
		c.frequency = freqHz
	}
}

// WithSineOrder sets the Taylor order of the sine approximation.
func WithSineOrder(order int) Option {
	return func(c *config) {
		c.sineOrder = order
	}
}

func applyOptions(opts []Option) config {
	cfg := config{sineOrder: DefaultSineOrder}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Oscillator is a Phasor with a waveform mapping.
type Oscillator struct {
	Phasor

	waveform Waveform
	sine     sineSeries
}

// New returns an oscillator of the given waveform.
func New(waveform Waveform, sampleRate float64, opts ...Option) (*Oscillator, error) {
	cfg := applyOptions(opts)

	o := &Oscillator{}
	if err := o.init(waveform, sampleRate, cfg); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Oscillator) init(waveform Waveform, sampleRate float64, cfg config) error {
	if !waveform.valid() {
		return fmt.Errorf("oscillator waveform unknown: %d", int(waveform))
	}
	if err := o.Phasor.init(sampleRate); err != nil {
		return err
	}
	if err := o.sine.setOrder(cfg.sineOrder); err != nil {
		return err
	}
	if err := o.SetFrequency(cfg.frequency); err != nil {
		return err
	}
	o.waveform = waveform
	return nil
}

// Waveform returns the waveform tag.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// SetWaveform switches the waveform without touching the phase.
func (o *Oscillator) SetWaveform(waveform Waveform) error {
	if !waveform.valid() {
		return fmt.Errorf("oscillator waveform unknown: %d", int(waveform))
	}
	o.waveform = waveform
	return nil
}

// SineOrder returns the Taylor order used for Sine.
func (o *Oscillator) SineOrder() int { return o.sine.order }

// SetSineOrder changes the Taylor order. The order must be odd and within
// [1, MaxSineOrder]; higher orders trade computation for accuracy.
func (o *Oscillator) SetSineOrder(order int) error {
	return o.sine.setOrder(order)
}

// ProcessSample advances the phase and returns the waveform value at the
// new phase.
func (o *Oscillator) ProcessSample() float64 {
	o.advance()
	return o.Value(o.phase)
}

// Process fills dst with consecutive samples.
func (o *Oscillator) Process(dst []float64) {
	for i := range dst {
		dst[i] = o.ProcessSample()
	}
}

// Value maps phase in [0, 1) to the waveform amplitude without touching
// oscillator state.
func (o *Oscillator) Value(phase float64) float64 {
	switch o.waveform {
	case Saw:
		return phase*2 - 1
	case Triangle:
		return math.Abs(phase*2-1)*2 - 1
	default:
		return o.sine.sineOfPhase(phase)
	}
}
