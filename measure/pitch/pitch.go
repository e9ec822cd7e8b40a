package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
	"github.com/cwbudde/algo-blockdsp/dsp/window"

	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	defaultFFTSize      = 8192
	maxOneShotFFTSize   = 32768
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0
	minFFTSize          = 16

	// Added to bin power before taking logs.
	powerFloor = 1e-300
)

// Config holds analyzer parameters. Zero fields select defaults.
type Config struct {
	SampleRate     float64
	FFTSize        int
	RangeLowerFreq float64
	RangeUpperFreq float64
	// Window tapers each frame before the FFT. The zero value is Hann.
	Window window.Type
}

// Result describes the strongest spectral peak.
type Result struct {
	// Frequency is the interpolated peak frequency in Hz.
	Frequency float64
	// Bin is the FFT bin holding the raw peak.
	Bin int
	// Amplitude estimates the peak amplitude of the sinusoid.
	Amplitude float64
	// PowerDB is the raw peak bin power in dB.
	PowerDB float64
}

// Analyzer finds dominant frequencies. Buffers and the FFT plan are
// allocated once, so Analyze does not allocate.
type Analyzer struct {
	cfg     Config
	plan    *algofft.Plan[complex128]
	window  []float64
	winSum  float64
	frame   []float64
	fftIn   []complex128
	fftOut  []complex128
	re, im  []float64
	power   []float64
	lowBin  int
	highBin int
}

// NewAnalyzer validates cfg and prepares the FFT plan.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("pitch analyzer sample rate must be positive and finite: %f", cfg.SampleRate)
	}
	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}
	if cfg.FFTSize < minFFTSize || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return nil, fmt.Errorf("pitch analyzer FFT size must be a power of two >= %d: %d", minFFTSize, cfg.FFTSize)
	}
	if cfg.RangeLowerFreq <= 0 {
		cfg.RangeLowerFreq = defaultRangeLowerHz
	}
	if cfg.RangeUpperFreq <= 0 {
		cfg.RangeUpperFreq = defaultRangeUpperHz
	}
	if cfg.RangeUpperFreq <= cfg.RangeLowerFreq {
		return nil, fmt.Errorf("pitch analyzer range must satisfy lower < upper: %f >= %f",
			cfg.RangeLowerFreq, cfg.RangeUpperFreq)
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("pitch analyzer FFT plan: %w", err)
	}

	n := cfg.FFTSize
	win, err := window.Generate(cfg.Window, n, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("pitch analyzer: %w", err)
	}

	bins := n/2 + 1
	a := &Analyzer{
		cfg:    cfg,
		plan:   plan,
		window: win,
		winSum: window.CoherentGain(win) * float64(n),
		frame:  make([]float64, n),
		fftIn:  make([]complex128, n),
		fftOut: make([]complex128, n),
		re:     make([]float64, bins),
		im:     make([]float64, bins),
		power:  make([]float64, bins),
	}

	binHz := cfg.SampleRate / float64(n)
	a.lowBin = clampInt(int(math.Floor(cfg.RangeLowerFreq/binHz)), 1, bins-2)
	a.highBin = clampInt(int(math.Ceil(cfg.RangeUpperFreq/binHz)), a.lowBin, bins-2)

	return a, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// BinWidth returns the FFT resolution in Hz.
func (a *Analyzer) BinWidth() float64 {
	return a.cfg.SampleRate / float64(a.cfg.FFTSize)
}

// PowerSpectrum returns the bin powers of the last analysis, DC to Nyquist.
// The slice is owned by the analyzer and overwritten by the next Analyze.
func (a *Analyzer) PowerSpectrum() []float64 { return a.power }

// Analyze estimates the dominant frequency of the last FFTSize samples of
// signal. Shorter signals are zero-padded at the end. A silent or empty
// signal yields a zero Result.
func (a *Analyzer) Analyze(signal []float64) Result {
	n := a.cfg.FFTSize
	if len(signal) > n {
		signal = signal[len(signal)-n:]
	}

	m := copy(a.frame, signal)
	core.Zero(a.frame[m:])
	if err := window.Apply(a.frame[:m], a.window[:m]); err != nil {
		return Result{}
	}

	for i, v := range a.frame {
		a.fftIn[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.fftOut, a.fftIn); err != nil {
		return Result{}
	}

	for k := range a.power {
		a.re[k] = real(a.fftOut[k])
		a.im[k] = imag(a.fftOut[k])
	}

	vecmath.Power(a.power, a.re, a.im)

	peak := a.lowBin
	for k := a.lowBin + 1; k <= a.highBin; k++ {
		if a.power[k] > a.power[peak] {
			peak = k
		}
	}

	if a.power[peak] <= 0 {
		return Result{}
	}

	offset := 0.0
	if peak > 0 && peak < len(a.power)-1 {
		l := math.Log(a.power[peak-1] + powerFloor)
		c := math.Log(a.power[peak] + powerFloor)
		r := math.Log(a.power[peak+1] + powerFloor)
		if den := l - 2*c + r; den < 0 {
			offset = 0.5 * (l - r) / den
		}
	}

	return Result{
		Frequency: (float64(peak) + offset) * a.BinWidth(),
		Bin:       peak,
		Amplitude: 2 * math.Sqrt(a.power[peak]) / a.winSum,
		PowerDB:   core.LinearPowerToDB(a.power[peak]),
	}
}

// DominantFrequency is a one-shot analysis. The FFT size is the largest
// power of two not exceeding len(signal), capped at 32768.
func DominantFrequency(signal []float64, sampleRate float64) (float64, error) {
	if len(signal) < minFFTSize {
		return 0, fmt.Errorf("pitch signal too short: %d < %d samples", len(signal), minFFTSize)
	}

	size := minFFTSize
	for size*2 <= len(signal) && size*2 <= maxOneShotFFTSize {
		size *= 2
	}

	a, err := NewAnalyzer(Config{SampleRate: sampleRate, FFTSize: size})
	if err != nil {
		return 0, err
	}

	return a.Analyze(signal).Frequency, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
