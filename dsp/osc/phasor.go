package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
)

// Phasor is a phase accumulator advancing by frequency/sampleRate per sample.
type Phasor struct {
	phase      float64
	frequency  float64
	sampleRate float64
	increment  float64
}

// NewPhasor returns a Phasor at 0 Hz with phase 0.
func NewPhasor(sampleRate float64) (*Phasor, error) {
	p := &Phasor{}
	if err := p.init(sampleRate); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Phasor) init(sampleRate float64) error {
	if !core.IsFinitePositive(sampleRate) {
		return fmt.Errorf("phasor sample rate must be positive and finite: %f", sampleRate)
	}
	p.sampleRate = sampleRate
	p.updateIncrement()
	return nil
}

// SetFrequency sets the frequency in Hz. Negative values run the phase
// backwards.
func (p *Phasor) SetFrequency(freqHz float64) error {
	if math.IsNaN(freqHz) || math.IsInf(freqHz, 0) {
		return fmt.Errorf("phasor frequency must be finite: %f", freqHz)
	}
	p.frequency = freqHz
	p.updateIncrement()
	return nil
}

// SetSampleRate updates the sample rate in Hz.
func (p *Phasor) SetSampleRate(sampleRate float64) error {
	if !core.IsFinitePositive(sampleRate) {
		return fmt.Errorf("phasor sample rate must be positive and finite: %f", sampleRate)
	}
	p.sampleRate = sampleRate
	p.updateIncrement()
	return nil
}

// SetPhase sets the current phase; the value is wrapped into [0, 1).
func (p *Phasor) SetPhase(phase float64) {
	p.phase = core.WrapPhase(phase)
}

// Phase returns the current phase in [0, 1).
func (p *Phasor) Phase() float64 { return p.phase }

// Frequency returns the frequency in Hz.
func (p *Phasor) Frequency() float64 { return p.frequency }

// SampleRate returns the sample rate in Hz.
func (p *Phasor) SampleRate() float64 { return p.sampleRate }

// Increment returns the per-sample phase increment.
func (p *Phasor) Increment() float64 { return p.increment }

// Reset rewinds the phase to 0.
func (p *Phasor) Reset() { p.phase = 0 }

// ProcessSample advances the phase by one sample and returns it.
func (p *Phasor) ProcessSample() float64 {
	p.advance()
	return p.phase
}

func (p *Phasor) advance() {
	p.phase = core.WrapPhase(p.phase + p.increment)
}

func (p *Phasor) updateIncrement() {
	p.increment = p.frequency / p.sampleRate
}
