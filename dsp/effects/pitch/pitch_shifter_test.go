package pitch

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-blockdsp/dsp/interp"
	"github.com/cwbudde/algo-blockdsp/internal/testutil"
	pitchmeasure "github.com/cwbudde/algo-blockdsp/measure/pitch"
)

func TestNewPitchShifter(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		opts       []Option
		wantErr    bool
	}{
		{name: "valid 44100", sampleRate: 44100},
		{name: "valid 48000", sampleRate: 48000},
		{name: "custom window", sampleRate: 48000, opts: []Option{WithWindowMs(40)}},
		{name: "hermite taps", sampleRate: 48000, opts: []Option{WithInterpolation(interp.ModeHermite)}},
		{name: "invalid zero", sampleRate: 0, wantErr: true},
		{name: "invalid negative", sampleRate: -1, wantErr: true},
		{name: "invalid NaN", sampleRate: math.NaN(), wantErr: true},
		{name: "invalid +Inf", sampleRate: math.Inf(1), wantErr: true},
		{name: "zero window", sampleRate: 48000, opts: []Option{WithWindowMs(0)}, wantErr: true},
		{name: "zero capacity", sampleRate: 48000, opts: []Option{WithCapacity(0)}, wantErr: true},
		{name: "window exceeds capacity", sampleRate: 48000, opts: []Option{WithCapacity(100)}, wantErr: true},
		{name: "invalid interpolation", sampleRate: 48000, opts: []Option{WithInterpolation(interp.Mode(42))}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPitchShifter(tt.sampleRate, tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPitchShifter() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr && p == nil {
				t.Fatalf("NewPitchShifter() returned nil without error")
			}
		})
	}
}

func TestPitchShifterDefaults(t *testing.T) {
	p, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatal(err)
	}

	if p.PitchRatio() != 1 || p.WindowMs() != 22 || p.Capacity() != 96000 {
		t.Fatalf("unexpected defaults: ratio=%g window=%g capacity=%d",
			p.PitchRatio(), p.WindowMs(), p.Capacity())
	}

	if p.WindowSamples() != 1056 {
		t.Fatalf("WindowSamples() = %g, want 1056", p.WindowSamples())
	}

	if p.Latency() != 528 {
		t.Fatalf("Latency() = %d, want 528", p.Latency())
	}

	if p.GrainFrequency() != 0 {
		t.Fatalf("GrainFrequency() = %g at unity, want 0", p.GrainFrequency())
	}
}

func TestPitchShifterSetPitchRatio(t *testing.T) {
	p, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatalf("NewPitchShifter() error = %v", err)
	}

	tests := []struct {
		name    string
		ratio   float64
		wantErr bool
	}{
		{name: "valid octave down", ratio: 0.5},
		{name: "valid unison", ratio: 1.0},
		{name: "valid octave up", ratio: 2.0},
		{name: "valid lowest", ratio: 0.25},
		{name: "valid highest", ratio: 4.0},
		{name: "invalid just below", ratio: 0.2499, wantErr: true},
		{name: "invalid just above", ratio: 4.0001, wantErr: true},
		{name: "invalid zero", ratio: 0, wantErr: true},
		{name: "invalid low bound", ratio: 0.1, wantErr: true},
		{name: "invalid high bound", ratio: 8.0, wantErr: true},
		{name: "invalid NaN", ratio: math.NaN(), wantErr: true},
		{name: "invalid +Inf", ratio: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.SetPitchRatio(tt.ratio)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetPitchRatio(%v) error = %v, wantErr %v", tt.ratio, err, tt.wantErr)
			}

			if !tt.wantErr && p.PitchRatio() != tt.ratio {
				t.Fatalf("PitchRatio() = %v, want %v", p.PitchRatio(), tt.ratio)
			}
		})
	}
}

func TestPitchShifterSemitones(t *testing.T) {
	p, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SetPitchSemitones(12); err != nil {
		t.Fatal(err)
	}

	if math.Abs(p.PitchRatio()-2) > 1e-12 {
		t.Fatalf("ratio = %g, want 2", p.PitchRatio())
	}

	if math.Abs(p.PitchSemitones()-12) > 1e-9 {
		t.Fatalf("semitones = %g, want 12", p.PitchSemitones())
	}

	if err := p.SetPitchSemitones(36); err == nil {
		t.Fatal("expected error for +36 semitones")
	}

	if err := p.SetPitchSemitones(math.NaN()); err == nil {
		t.Fatal("expected error for NaN semitones")
	}
}

func TestPitchShifterGrainFrequency(t *testing.T) {
	p, err := NewPitchShifter(48000, WithWindowMs(20))
	if err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct{ ratio, want float64 }{
		{ratio: 1.5, want: 25},
		{ratio: 0.5, want: 25},
		{ratio: 2, want: 50},
		{ratio: 0.25, want: 37.5},
	} {
		if err := p.SetPitchRatio(tt.ratio); err != nil {
			t.Fatal(err)
		}

		if got := p.GrainFrequency(); math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("ratio %g: GrainFrequency() = %g, want %g", tt.ratio, got, tt.want)
		}
	}
}

func TestPitchShifterWindowLimits(t *testing.T) {
	p, err := NewPitchShifter(48000, WithCapacity(4800))
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SetWindowMs(99); err != nil {
		t.Fatalf("SetWindowMs(99) error = %v", err)
	}

	if err := p.SetWindowMs(100); err == nil {
		t.Fatal("expected error: 4800-sample window does not fit 4800-sample history")
	}

	if p.WindowMs() != 99 {
		t.Fatalf("rejected window changed state: %g", p.WindowMs())
	}

	if err := p.SetSampleRate(96000); err == nil {
		t.Fatal("expected error: doubling the rate overflows the history")
	}

	if p.SampleRate() != 48000 {
		t.Fatalf("rejected rate changed state: %g", p.SampleRate())
	}

	if err := p.SetSampleRate(math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}

	if err := p.SetSampleRate(24000); err != nil {
		t.Fatal(err)
	}

	if math.Abs(p.WindowSamples()-2376) > 1e-9 {
		t.Fatalf("WindowSamples() = %g, want 2376", p.WindowSamples())
	}
}

func TestTapGainsSumToOne(t *testing.T) {
	for i := range 10001 {
		phase := float64(i) / 10000

		a, b := TapGains(phase)
		if math.Abs(a+b-1) > 1e-12 {
			t.Fatalf("phase %g: gains %g + %g != 1", phase, a, b)
		}

		if a < 0 || a > 1 || b < 0 || b > 1 {
			t.Fatalf("phase %g: gains out of [0,1]: %g %g", phase, a, b)
		}
	}

	tests := []struct{ phase, a, b float64 }{
		{phase: 0, a: 0, b: 1},
		{phase: 0.25, a: 0.5, b: 0.5},
		{phase: 0.5, a: 1, b: 0},
		{phase: 0.75, a: 0.5, b: 0.5},
	}
	for _, tt := range tests {
		a, b := TapGains(tt.phase)
		if math.Abs(a-tt.a) > 1e-12 || math.Abs(b-tt.b) > 1e-12 {
			t.Fatalf("TapGains(%g) = (%g, %g), want (%g, %g)", tt.phase, a, b, tt.a, tt.b)
		}
	}
}

func TestTapGainsMatchPartnerWindow(t *testing.T) {
	for i := range 1000 {
		phase := float64(i) / 1000
		partner := math.Mod(phase+0.5, 1)

		_, b := TapGains(phase)
		want := 0.5 - 0.5*math.Cos(2*math.Pi*partner)
		if math.Abs(b-want) > 1e-12 {
			t.Fatalf("phase %g: partner gain %g, want %g", phase, b, want)
		}
	}
}

func TestPitchShifterHermiteNeverReadsAhead(t *testing.T) {
	p, err := NewPitchShifter(48000, WithInterpolation(interp.ModeHermite))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetPitchRatio(2); err != nil {
		t.Fatal(err)
	}

	// On a rising ramp every past sample is smaller than the current one, so
	// a weighted sum of exact reads cannot exceed the input.
	const n = 20000
	for i := range n {
		x := float64(i) / n
		if got := p.ProcessSample(x); got > x+1e-9 {
			t.Fatalf("sample %d: output %v above newest input %v", i, got, x)
		}
	}
}

func TestPitchShifterUnityIsPureDelay(t *testing.T) {
	for _, opts := range [][]Option{
		nil,
		{WithInterpolation(interp.ModeLinear)},
		{WithInterpolation(interp.ModeHermite)},
	} {
		p, err := NewPitchShifter(48000, opts...)
		if err != nil {
			t.Fatal(err)
		}

		input := testutil.DeterministicNoise(7, 0.9, 4096)
		out := p.Process(input)

		testutil.RequireDelayed(t, out, input, p.Latency(), 0)

		if p.Phase() != 0 {
			t.Fatalf("phase moved at unity ratio: %g", p.Phase())
		}
	}
}

func TestPitchShifterPhaseStaysInRange(t *testing.T) {
	for _, ratio := range []float64{0.25, 0.5, 0.9, 1.1, 1.5, 2, 4} {
		p, err := NewPitchShifter(44100)
		if err != nil {
			t.Fatal(err)
		}

		if err := p.SetPitchRatio(ratio); err != nil {
			t.Fatal(err)
		}

		for range 20000 {
			p.ProcessSample(0.5)
			if ph := p.Phase(); ph < 0 || ph >= 1 {
				t.Fatalf("ratio %g: phase %g out of [0,1)", ratio, ph)
			}
		}
	}
}

func TestPitchShifterConstantInputStaysConstant(t *testing.T) {
	// Once the history is full of the same value every tap reads it and the
	// gains sum to one.
	p, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SetPitchRatio(1.7); err != nil {
		t.Fatal(err)
	}

	out := p.Process(testutil.DC(0.25, 8000))
	for i := 2000; i < len(out); i++ {
		if math.Abs(out[i]-0.25) > 1e-12 {
			t.Fatalf("sample %d: got %v, want 0.25", i, out[i])
		}
	}
}

// A tone whose period divides half the window an even number of times
// leaves the two taps in phase at every crossfade, so the output is a
// clean tone at ratio times the input frequency.
func TestPitchShifterPitchAccuracyAlignedWindow(t *testing.T) {
	const (
		sampleRate = 48000.0
		f0         = 500.0
		length     = 48000
		tolHz      = 3.0
	)

	input := testutil.DeterministicSine(f0, sampleRate, 0.8, length)

	for _, ratio := range []float64{0.5, 0.75, 1.5, 2} {
		p, err := NewPitchShifter(sampleRate, WithWindowMs(20))
		if err != nil {
			t.Fatal(err)
		}

		if err := p.SetPitchRatio(ratio); err != nil {
			t.Fatal(err)
		}

		got := dominantFrequency(t, p.Process(input), sampleRate)
		want := f0 * ratio
		if diff := math.Abs(got - want); diff > tolHz {
			t.Fatalf("ratio %g: got %g Hz, want %g Hz (diff %g)", ratio, got, want, diff)
		}
	}
}

func TestPitchShifterPitchAccuracyDefaultWindow(t *testing.T) {
	const (
		sampleRate = 48000.0
		f0         = 440.0
		length     = 48000
		tolHz      = 10.0
	)

	input := testutil.DeterministicSine(f0, sampleRate, 0.8, length)

	for _, ratio := range []float64{0.5, 1.5} {
		p, err := NewPitchShifter(sampleRate)
		if err != nil {
			t.Fatal(err)
		}

		if err := p.SetPitchRatio(ratio); err != nil {
			t.Fatal(err)
		}

		got := dominantFrequency(t, p.Process(input), sampleRate)
		want := f0 * ratio
		if diff := math.Abs(got - want); diff > tolHz {
			t.Fatalf("ratio %g: got %g Hz, want %g Hz (diff %g)", ratio, got, want, diff)
		}
	}
}

func TestPitchShifterShortBufferProducesFiniteValues(t *testing.T) {
	p, err := NewPitchShifter(48000, WithInterpolation(interp.ModeHermite))
	if err != nil {
		t.Fatalf("NewPitchShifter() error = %v", err)
	}

	if err := p.SetPitchRatio(1.7); err != nil {
		t.Fatalf("SetPitchRatio() error = %v", err)
	}

	input := []float64{1, -0.25, 0.1, 0, -0.1, 0.2, -0.3, 0.4}

	out := p.Process(input)
	if len(out) != len(input) {
		t.Fatalf("length mismatch: got=%d want=%d", len(out), len(input))
	}

	testutil.RequireFinite(t, out)

	if p.Process(nil) != nil {
		t.Fatal("Process(nil) should return nil")
	}
}

func TestPitchShifterProcessInPlaceMatchesProcess(t *testing.T) {
	input := testutil.DeterministicSine(330, 48000, 0.9, 4096)

	a, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatal(err)
	}

	b, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatal(err)
	}

	_ = a.SetPitchRatio(0.8)
	_ = b.SetPitchRatio(0.8)

	want := a.Process(input)

	got := append([]float64(nil), input...)
	b.ProcessInPlace(got)

	testutil.RequireSliceNearlyEqual(t, got, want, 0)
}

func TestPitchShifterResetDeterministic(t *testing.T) {
	p, err := NewPitchShifter(48000)
	if err != nil {
		t.Fatalf("NewPitchShifter() error = %v", err)
	}

	if err := p.SetPitchRatio(0.75); err != nil {
		t.Fatalf("SetPitchRatio() error = %v", err)
	}

	input := testutil.DeterministicSine(330, 48000, 0.9, 8192)

	got1 := p.Process(input)
	p.Reset()
	got2 := p.Process(input)

	testutil.RequireSliceNearlyEqual(t, got2, got1, 0)
}

func TestPitchShifterProcessSampleDoesNotAllocate(t *testing.T) {
	p, err := NewPitchShifter(48000, WithInterpolation(interp.ModeHermite))
	if err != nil {
		t.Fatal(err)
	}

	_ = p.SetPitchRatio(1.25)

	allocs := testing.AllocsPerRun(1000, func() {
		p.ProcessSample(0.1)
	})
	if allocs != 0 {
		t.Fatalf("ProcessSample allocated %v times per run", allocs)
	}
}

func dominantFrequency(t *testing.T, out []float64, sampleRate float64) float64 {
	t.Helper()

	a, err := pitchmeasure.NewAnalyzer(pitchmeasure.Config{SampleRate: sampleRate, FFTSize: 16384})
	if err != nil {
		t.Fatal(err)
	}

	return a.Analyze(out).Frequency
}
