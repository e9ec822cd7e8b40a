package pitch

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-blockdsp/dsp/interp"
)

func BenchmarkPitchShifterProcessSample(b *testing.B) {
	modes := []struct {
		name string
		mode interp.Mode
	}{
		{"nearest", interp.ModeNearest},
		{"linear", interp.ModeLinear},
		{"hermite", interp.ModeHermite},
	}

	for _, m := range modes {
		b.Run(m.name, func(b *testing.B) {
			p, err := NewPitchShifter(48000, WithInterpolation(m.mode))
			if err != nil {
				b.Fatal(err)
			}
			_ = p.SetPitchRatio(1.5)

			b.ReportAllocs()
			x := 0.0
			for i := 0; i < b.N; i++ {
				x = p.ProcessSample(math.Sin(float64(i) * 0.05))
			}
			_ = x
		})
	}
}

func BenchmarkPitchShifterProcessInPlaceBlock(b *testing.B) {
	p, _ := NewPitchShifter(48000)
	_ = p.SetPitchSemitones(-5)

	block := make([]float64, 128)
	b.SetBytes(int64(len(block) * 8))
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		block[0] = float64(i & 1)
		p.ProcessInPlace(block)
	}
}
