package osc

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
)

// MaxVoices bounds the size of a harmonic bank.
const MaxVoices = 64

// Poly sums a bank of oscillators tuned to integer multiples of a
// fundamental. Voice 0 is the fundamental, voice i runs at (i+1)·f.
//
// Each voice accumulates phase on its own, so rounding slowly pulls the
// harmonics away from exact integer ratios. Whenever the fundamental wraps
// into a new cycle the other voices are forced onto its phase, which clears
// the accumulated drift at the cost of a small step in the harmonics.
type Poly struct {
	waveform   Waveform
	numVoices  int
	sampleRate float64
	frequency  float64
	sineOrder  int

	voices []Oscillator
	gain   float64

	last     float64
	relocked bool
}

// NewPoly validates the engine configuration. Voices are allocated by
// Prepare.
func NewPoly(waveform Waveform, numVoices int, sampleRate float64, opts ...Option) (*Poly, error) {
	cfg := applyOptions(opts)

	if !waveform.valid() {
		return nil, fmt.Errorf("poly waveform unknown: %d", int(waveform))
	}
	if numVoices <= 0 || numVoices > MaxVoices {
		return nil, fmt.Errorf("poly voices must be in [1, %d]: %d", MaxVoices, numVoices)
	}
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("poly sample rate must be positive and finite: %f", sampleRate)
	}
	if err := validateSineOrder(cfg.sineOrder); err != nil {
		return nil, err
	}
	if math.IsNaN(cfg.frequency) || math.IsInf(cfg.frequency, 0) {
		return nil, fmt.Errorf("poly frequency must be finite: %f", cfg.frequency)
	}

	return &Poly{
		waveform:   waveform,
		numVoices:  numVoices,
		sampleRate: sampleRate,
		frequency:  cfg.frequency,
		sineOrder:  cfg.sineOrder,
		gain:       1 / float64(numVoices),
	}, nil
}

// Prepare builds the oscillator bank. It allocates once; later calls are
// no-ops.
func (p *Poly) Prepare() error {
	if p.voices != nil {
		return nil
	}

	voices := make([]Oscillator, p.numVoices)
	cfg := config{sineOrder: p.sineOrder}
	for i := range voices {
		cfg.frequency = p.frequency * float64(i+1)
		if err := voices[i].init(p.waveform, p.sampleRate, cfg); err != nil {
			return fmt.Errorf("poly voice %d: %w", i, err)
		}
	}
	p.voices = voices
	p.last = 0
	return nil
}

// Prepared reports whether Prepare has built the voices.
func (p *Poly) Prepared() bool { return p.voices != nil }

// Waveform returns the waveform shared by all voices.
func (p *Poly) Waveform() Waveform { return p.waveform }

// SetWaveform switches the waveform of every voice.
func (p *Poly) SetWaveform(waveform Waveform) error {
	if !waveform.valid() {
		return fmt.Errorf("poly waveform unknown: %d", int(waveform))
	}
	p.waveform = waveform
	for i := range p.voices {
		p.voices[i].waveform = waveform
	}
	return nil
}

// NumVoices returns the number of voices.
func (p *Poly) NumVoices() int { return p.numVoices }

// Frequency returns the fundamental frequency in Hz.
func (p *Poly) Frequency() float64 { return p.frequency }

// SetFrequency sets the fundamental; voice i follows at (i+1)·freqHz.
func (p *Poly) SetFrequency(freqHz float64) error {
	if math.IsNaN(freqHz) || math.IsInf(freqHz, 0) {
		return fmt.Errorf("poly frequency must be finite: %f", freqHz)
	}
	p.frequency = freqHz
	for i := range p.voices {
		_ = p.voices[i].SetFrequency(freqHz * float64(i+1))
	}
	return nil
}

// SetSampleRate updates the sample rate of every voice.
func (p *Poly) SetSampleRate(sampleRate float64) error {
	if !core.IsFinitePositive(sampleRate) {
		return fmt.Errorf("poly sample rate must be positive and finite: %f", sampleRate)
	}
	p.sampleRate = sampleRate
	for i := range p.voices {
		_ = p.voices[i].SetSampleRate(sampleRate)
	}
	return nil
}

// SetSineOrder changes the Taylor order of every voice.
func (p *Poly) SetSineOrder(order int) error {
	if err := validateSineOrder(order); err != nil {
		return err
	}
	p.sineOrder = order
	for i := range p.voices {
		_ = p.voices[i].SetSineOrder(order)
	}
	return nil
}

// Phase returns the fundamental's phase.
func (p *Poly) Phase() float64 {
	if len(p.voices) == 0 {
		return 0
	}
	return p.voices[0].Phase()
}

// SetPhase moves every voice to phase.
func (p *Poly) SetPhase(phase float64) {
	for i := range p.voices {
		p.voices[i].SetPhase(phase)
	}
	p.last = p.Phase()
}

// VoicePhase returns the phase of voice i.
func (p *Poly) VoicePhase(i int) float64 {
	return p.voices[i].Phase()
}

// Voice returns voice i for inspection or external synchronization.
func (p *Poly) Voice(i int) *Oscillator {
	return &p.voices[i]
}

// Relocked reports whether the last ProcessSample re-locked the harmonics.
func (p *Poly) Relocked() bool { return p.relocked }

// Reset rewinds every voice to phase 0.
func (p *Poly) Reset() {
	p.SetPhase(0)
	p.relocked = false
}

// ProcessSample advances all voices by one sample and returns their
// normalized sum. It returns 0 before Prepare.
func (p *Poly) ProcessSample() float64 {
	if len(p.voices) == 0 {
		return 0
	}

	fund := &p.voices[0]
	sum := fund.ProcessSample()
	phase := fund.Phase()

	wrapped := phase < p.last
	if fund.Increment() < 0 {
		wrapped = phase > p.last
	}

	for i := 1; i < len(p.voices); i++ {
		sum += p.voices[i].ProcessSample()
	}

	if wrapped {
		for i := 1; i < len(p.voices); i++ {
			p.voices[i].phase = phase
		}
	}

	p.relocked = wrapped
	p.last = phase
	return sum * p.gain
}

// Process fills dst with consecutive samples.
func (p *Poly) Process(dst []float64) {
	for i := range dst {
		dst[i] = p.ProcessSample()
	}
}
