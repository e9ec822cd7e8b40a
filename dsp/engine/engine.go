package engine

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
	"github.com/cwbudde/algo-blockdsp/dsp/effects"
	"github.com/cwbudde/algo-blockdsp/dsp/effects/pitch"
	"github.com/cwbudde/algo-blockdsp/dsp/osc"
	"github.com/cwbudde/algo-blockdsp/dsp/param"
	"github.com/cwbudde/algo-blockdsp/dsp/scope"
)

// MeterFloorDB is the lowest level reported by MeterDB.
const MeterFloorDB = -96.0

// Engine renders audio blocks. ProcessBlock must be called from a single
// goroutine; the accessors for meter, clips and scope are safe from any
// goroutine.
type Engine struct {
	cfg      core.ProcessorConfig
	controls *param.Controls

	osc     *osc.Oscillator
	poly    *osc.Poly
	echo    *effects.Echo
	shifter *pitch.PitchShifter
	scope   *scope.Buffer

	// applied is the control state currently configured on the processors.
	applied param.Snapshot
	gain    float64
	ramp    []float64

	mode      atomic.Int32
	meterBits atomic.Uint64
	clips     atomic.Uint64
	frames    atomic.Uint64
}

// New returns an engine with default options.
func New(opts ...core.ProcessorOption) (*Engine, error) {
	return NewWithOptions(opts)
}

// NewWithOptions returns an engine configured by core options (sample rate,
// block size) and engine options.
func NewWithOptions(coreOpts []core.ProcessorOption, opts ...Option) (*Engine, error) {
	pc := core.ApplyProcessorOptions(coreOpts...)
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	cfg := applyOptions(opts)
	s := cfg.controls.Snapshot()

	waveform := osc.Waveform(s.Waveform)

	o, err := osc.New(waveform, pc.SampleRate,
		osc.WithFrequency(s.Frequency), osc.WithSineOrder(s.SineOrder))
	if err != nil {
		return nil, fmt.Errorf("engine oscillator: %w", err)
	}

	poly, err := osc.NewPoly(waveform, cfg.voices, pc.SampleRate,
		osc.WithFrequency(s.Frequency), osc.WithSineOrder(s.SineOrder))
	if err != nil {
		return nil, fmt.Errorf("engine poly: %w", err)
	}
	if err := poly.Prepare(); err != nil {
		return nil, fmt.Errorf("engine poly: %w", err)
	}

	echo, err := effects.NewEcho(cfg.delayCapacity)
	if err != nil {
		return nil, fmt.Errorf("engine delay: %w", err)
	}
	_ = echo.SetDelay(min(s.DelaySamples, echo.Capacity()-1))
	if err := echo.SetMix(s.DelayMix); err != nil {
		return nil, fmt.Errorf("engine delay: %w", err)
	}
	if err := echo.SetFeedback(min(s.Feedback, effects.MaxEchoFeedback)); err != nil {
		return nil, fmt.Errorf("engine delay: %w", err)
	}

	shifter, err := pitch.NewPitchShifter(pc.SampleRate, pitch.WithWindowMs(cfg.pitchWindowMs))
	if err != nil {
		return nil, fmt.Errorf("engine pitch: %w", err)
	}
	if err := shifter.SetPitchRatio(s.PitchRatio); err != nil {
		return nil, fmt.Errorf("engine pitch: %w", err)
	}

	sc, err := scope.New(cfg.scopeSize)
	if err != nil {
		return nil, fmt.Errorf("engine scope: %w", err)
	}

	e := &Engine{
		cfg:      pc,
		controls: cfg.controls,
		osc:      o,
		poly:     poly,
		echo:     echo,
		shifter:  shifter,
		scope:    sc,
		applied:  s,
		gain:     targetGain(s),
		ramp:     make([]float64, pc.BlockSize),
	}
	e.mode.Store(int32(s.Mode))
	e.meterBits.Store(math.Float64bits(MeterFloorDB))

	return e, nil
}

// SampleRate returns the sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.cfg.SampleRate }

// BlockSize returns the largest chunk processed in one pass.
func (e *Engine) BlockSize() int { return e.cfg.BlockSize }

// Controls returns the live control set.
func (e *Engine) Controls() *param.Controls { return e.controls }

// Scope returns the output history.
func (e *Engine) Scope() *scope.Buffer { return e.scope }

// Mode returns the mode rendered by the last block.
func (e *Engine) Mode() Mode { return Mode(e.mode.Load()) }

// PitchLatency returns the pitch shifter delay at unity ratio in samples.
func (e *Engine) PitchLatency() int { return e.shifter.Latency() }

// MeterDB returns the RMS level of the last block in dB, floored at
// MeterFloorDB.
func (e *Engine) MeterDB() float64 {
	return math.Float64frombits(e.meterBits.Load())
}

// Clips returns the number of output samples with magnitude above 1.
func (e *Engine) Clips() uint64 { return e.clips.Load() }

// ResetClips clears the clip counter.
func (e *Engine) ResetClips() { e.clips.Store(0) }

// Frames returns the number of samples rendered.
func (e *Engine) Frames() uint64 { return e.frames.Load() }

// Reset clears processor state, meter and counters. Controls are kept.
func (e *Engine) Reset() {
	e.osc.Reset()
	e.poly.Reset()
	e.echo.Reset()
	e.shifter.Reset()
	e.scope.Reset()
	e.gain = targetGain(e.applied)
	e.meterBits.Store(math.Float64bits(MeterFloorDB))
	e.clips.Store(0)
	e.frames.Store(0)
}

// ProcessBlock renders len(out) samples. in is the input block for the
// through, delay and pitch modes. Input shorter than out is padded with
// silence; a nil input makes the delay and pitch modes process the
// oscillator instead. Blocks longer than BlockSize are processed in chunks.
func (e *Engine) ProcessBlock(out, in []float64) {
	haveInput := in != nil
	for len(out) > 0 {
		n := min(len(out), e.cfg.BlockSize)

		chunk := in[:min(n, len(in))]
		in = in[len(chunk):]

		e.processChunk(out[:n], chunk, haveInput)
		out = out[n:]
	}
}

func (e *Engine) processChunk(out, in []float64, haveInput bool) {
	s := e.controls.Snapshot()
	e.apply(s)

	switch Mode(e.mode.Load()) {
	case ModeOscillator:
		e.osc.Process(out)
	case ModePoly:
		e.poly.Process(out)
	case ModeDelay:
		for i := range out {
			out[i] = e.echo.ProcessSample(e.source(in, i, haveInput))
		}
	case ModePitch:
		for i := range out {
			out[i] = e.shifter.ProcessSample(e.source(in, i, haveInput))
		}
	default:
		n := copy(out, in)
		core.Zero(out[n:])
	}

	e.applyGain(out, targetGain(s))
	e.measure(out)
	e.scope.Write(out)
	e.frames.Add(uint64(len(out)))
}

// source returns input sample i, or an oscillator sample when the caller
// supplied no input at all.
func (e *Engine) source(in []float64, i int, haveInput bool) float64 {
	if !haveInput {
		return e.osc.ProcessSample()
	}
	if i < len(in) {
		return in[i]
	}
	return 0
}

// apply pushes changed controls into the processors.
func (e *Engine) apply(s param.Snapshot) {
	prev := e.applied

	if s.Frequency != prev.Frequency {
		_ = e.osc.SetFrequency(s.Frequency)
		_ = e.poly.SetFrequency(s.Frequency)
	}

	if s.Waveform != prev.Waveform {
		_ = e.osc.SetWaveform(osc.Waveform(s.Waveform))
		_ = e.poly.SetWaveform(osc.Waveform(s.Waveform))
	}

	if s.SineOrder != prev.SineOrder {
		_ = e.osc.SetSineOrder(s.SineOrder)
		_ = e.poly.SetSineOrder(s.SineOrder)
	}

	if s.DelaySamples != prev.DelaySamples {
		_ = e.echo.SetDelay(min(s.DelaySamples, e.echo.Capacity()-1))
	}

	if s.DelayMix != prev.DelayMix {
		_ = e.echo.SetMix(s.DelayMix)
	}

	if s.Feedback != prev.Feedback {
		_ = e.echo.SetFeedback(min(s.Feedback, effects.MaxEchoFeedback))
	}

	if s.PitchRatio != prev.PitchRatio {
		_ = e.shifter.SetPitchRatio(s.PitchRatio)
	}

	if m := Mode(s.Mode); m != e.Mode() && m.valid() {
		switch m {
		case ModeDelay:
			e.echo.Reset()
		case ModePitch:
			e.shifter.Reset()
		}
		e.mode.Store(int32(m))
	}

	e.applied = s
}

// applyGain ramps linearly from the previous block's gain to target.
func (e *Engine) applyGain(out []float64, target float64) {
	n := len(out)
	if e.gain == target {
		if target != 1 {
			ramp := e.ramp[:n]
			core.Fill(ramp, target)
			vecmath.MulBlockInPlace(out, ramp)
		}
		return
	}

	ramp := e.ramp[:n]
	step := (target - e.gain) / float64(n)
	for i := range ramp {
		ramp[i] = e.gain + step*float64(i+1)
	}
	ramp[n-1] = target

	vecmath.MulBlockInPlace(out, ramp)
	e.gain = target
}

func (e *Engine) measure(out []float64) {
	power := 0.0
	clips := uint64(0)
	for _, x := range out {
		power += x * x
		if x > 1 || x < -1 {
			clips++
		}
	}

	db := core.LinearPowerToDB(power / float64(len(out)))
	if math.IsNaN(db) || db < MeterFloorDB {
		db = MeterFloorDB
	}

	e.meterBits.Store(math.Float64bits(db))
	if clips > 0 {
		e.clips.Add(clips)
	}
}

func targetGain(s param.Snapshot) float64 {
	if s.Muted {
		return 0
	}
	return core.DBToLinear(s.VolumeDB)
}
