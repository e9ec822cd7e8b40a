package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
	"github.com/cwbudde/algo-blockdsp/dsp/delay"
	"github.com/cwbudde/algo-blockdsp/dsp/interp"
)

const (
	defaultPitchShifterRatio    = 1.0
	defaultPitchShifterWindowMs = 22.0

	minPitchShifterRatio = 0.25
	maxPitchShifterRatio = 4.0

	// History slots needed beyond the window by the cubic tap read.
	pitchShifterGuard = 3
)

type config struct {
	windowMs   float64
	capacity   int
	interp     interp.Mode
	fractional bool
}

// Option configures a PitchShifter.
type Option func(*config)

// WithWindowMs sets the grain window length in milliseconds.
func WithWindowMs(ms float64) Option {
	return func(c *config) { c.windowMs = ms }
}

// WithCapacity sets the history length in samples.
func WithCapacity(samples int) Option {
	return func(c *config) { c.capacity = samples }
}

// WithInterpolation reads the taps at fractional offsets using mode instead
// of rounding them to whole samples.
func WithInterpolation(mode interp.Mode) Option {
	return func(c *config) {
		c.interp = mode
		c.fractional = true
	}
}

// PitchShifter is a mono dual-tap grain pitch shifter.
//
// Pitch ratio:
//   - 1.0 = unchanged (pure delay of Latency samples)
//   - 2.0 = one octave up
//   - 0.5 = one octave down
type PitchShifter struct {
	sampleRate float64
	pitchRatio float64
	windowMs   float64

	windowSamples float64
	phase         float64
	increment     float64

	interp     interp.Mode
	fractional bool

	history *delay.Line
}

// NewPitchShifter returns a shifter at unity ratio.
func NewPitchShifter(sampleRate float64, opts ...Option) (*PitchShifter, error) {
	if !core.IsFinitePositive(sampleRate) {
		return nil, fmt.Errorf("pitch shifter sample rate must be positive and finite: %f", sampleRate)
	}

	cfg := config{
		windowMs: defaultPitchShifterWindowMs,
		capacity: delay.DefaultCapacity,
		interp:   interp.ModeLinear,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.fractional && !cfg.interp.Valid() {
		return nil, fmt.Errorf("pitch shifter interpolation mode invalid: %d", cfg.interp)
	}

	history, err := delay.New(cfg.capacity)
	if err != nil {
		return nil, fmt.Errorf("pitch shifter history: %w", err)
	}

	p := &PitchShifter{
		sampleRate: sampleRate,
		pitchRatio: defaultPitchShifterRatio,
		interp:     cfg.interp,
		fractional: cfg.fractional,
		history:    history,
	}

	if err := p.SetWindowMs(cfg.windowMs); err != nil {
		return nil, err
	}

	return p, nil
}

// SampleRate returns the current sample rate in Hz.
func (p *PitchShifter) SampleRate() float64 { return p.sampleRate }

// PitchRatio returns the pitch ratio.
func (p *PitchShifter) PitchRatio() float64 { return p.pitchRatio }

// PitchSemitones returns the current pitch shift in semitones.
func (p *PitchShifter) PitchSemitones() float64 { return 12.0 * math.Log2(p.pitchRatio) }

// WindowMs returns the grain window length in milliseconds.
func (p *PitchShifter) WindowMs() float64 { return p.windowMs }

// WindowSamples returns the grain window length in samples.
func (p *PitchShifter) WindowSamples() float64 { return p.windowSamples }

// Capacity returns the history length in samples.
func (p *PitchShifter) Capacity() int { return p.history.Len() }

// Phase returns the grain phase in [0, 1).
func (p *PitchShifter) Phase() float64 { return p.phase }

// GrainFrequency returns the rate in Hz at which the taps sweep the window.
func (p *PitchShifter) GrainFrequency() float64 {
	return math.Abs(1000 * (1 - p.pitchRatio) / p.windowMs)
}

// Latency returns the delay in samples at unity ratio.
func (p *PitchShifter) Latency() int {
	return int(math.Round(0.5 * p.windowSamples))
}

// SetSampleRate updates the sample rate. The window must still fit into the
// history at the new rate.
func (p *PitchShifter) SetSampleRate(sampleRate float64) error {
	if !core.IsFinitePositive(sampleRate) {
		return fmt.Errorf("pitch shifter sample rate must be positive and finite: %f", sampleRate)
	}

	windowSamples := p.windowMs * sampleRate / 1000
	if err := p.checkWindow(windowSamples); err != nil {
		return err
	}

	p.sampleRate = sampleRate
	p.windowSamples = windowSamples
	p.updateIncrement()
	return nil
}

// SetWindowMs updates the grain window length.
func (p *PitchShifter) SetWindowMs(ms float64) error {
	if !core.IsFinitePositive(ms) {
		return fmt.Errorf("pitch shifter window must be positive and finite: %f ms", ms)
	}

	windowSamples := ms * p.sampleRate / 1000
	if err := p.checkWindow(windowSamples); err != nil {
		return err
	}

	p.windowMs = ms
	p.windowSamples = windowSamples
	p.updateIncrement()
	return nil
}

// SetPitchRatio updates the pitch shift ratio. The ratio must lie in
// [0.25, 4], two octaves either way.
func (p *PitchShifter) SetPitchRatio(ratio float64) error {
	if !core.IsFinitePositive(ratio) || ratio < minPitchShifterRatio || ratio > maxPitchShifterRatio {
		return fmt.Errorf("pitch shifter ratio must be in [%f, %f]: %f",
			minPitchShifterRatio, maxPitchShifterRatio, ratio)
	}

	p.pitchRatio = ratio
	p.updateIncrement()
	return nil
}

// SetPitchSemitones updates pitch shift in semitones.
func (p *PitchShifter) SetPitchSemitones(semitones float64) error {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return fmt.Errorf("pitch shifter semitones must be finite: %f", semitones)
	}

	if err := p.SetPitchRatio(math.Pow(2, semitones/12.0)); err != nil {
		return fmt.Errorf("pitch shifter semitones out of range: %w", err)
	}
	return nil
}

// Reset clears the history and the grain phase.
func (p *PitchShifter) Reset() {
	p.history.Reset()
	p.phase = 0
}

// ProcessSample consumes one input sample and returns one output sample.
func (p *PitchShifter) ProcessSample(x float64) float64 {
	p.history.Push(x)

	if p.pitchRatio == 1 {
		p.phase = 0
	} else {
		p.phase = core.WrapPhase(p.phase + p.increment)
	}

	// Upward shifts sweep the taps toward the newest sample.
	tapA := p.phase
	if p.pitchRatio > 1 {
		tapA = core.WrapPhase(1 - p.phase)
	}
	tapB := core.WrapPhase(tapA + 0.5)

	gainA, gainB := TapGains(tapA)
	return gainA*p.readTap(tapA) + gainB*p.readTap(tapB)
}

// Process pitch-shifts input and returns a new output block with equal length.
func (p *PitchShifter) Process(input []float64) []float64 {
	if len(input) == 0 {
		return nil
	}

	out := make([]float64, len(input))
	for i, x := range input {
		out[i] = p.ProcessSample(x)
	}
	return out
}

// ProcessInPlace pitch-shifts buf in place.
func (p *PitchShifter) ProcessInPlace(buf []float64) {
	for i, x := range buf {
		buf[i] = p.ProcessSample(x)
	}
}

// TapGains returns the raised-cosine gains of the tap at phaseTap and of
// its partner half a window away. The gains sum to one.
func TapGains(phaseTap float64) (a, b float64) {
	c := 0.5 * math.Cos(2*math.Pi*phaseTap)
	return 0.5 - c, 0.5 + c
}

// readTap returns the history sample tap·window samples behind the newest one.
func (p *PitchShifter) readTap(tap float64) float64 {
	offset := tap * p.windowSamples
	if p.fractional {
		return p.history.ReadFractional(offset+1, p.interp)
	}
	return p.history.Pop(int(math.Round(offset)) + 1)
}

func (p *PitchShifter) checkWindow(windowSamples float64) error {
	if windowSamples < 1 {
		return fmt.Errorf("pitch shifter window must span at least one sample: %f", windowSamples)
	}

	if limit := float64(p.history.Len() - pitchShifterGuard); windowSamples > limit {
		return fmt.Errorf("pitch shifter window of %.0f samples exceeds history capacity %d",
			windowSamples, p.history.Len())
	}
	return nil
}

func (p *PitchShifter) updateIncrement() {
	p.increment = p.GrainFrequency() / p.sampleRate
}
