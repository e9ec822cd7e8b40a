package audio

import (
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
)

// Streamer is an endless beep.Streamer over a Source.
type Streamer struct {
	source Source
	mono   []float64
}

var _ beep.Streamer = (*Streamer)(nil)

// NewStreamer returns a streamer pulling from source.
func NewStreamer(source Source) *Streamer {
	return &Streamer{source: source}
}

// Stream fills samples with the mono source on both channels.
func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	s.mono = core.EnsureLen(s.mono, len(samples))
	s.source.ProcessBlock(s.mono, nil)

	for i, x := range s.mono {
		samples[i] = [2]float64{x, x}
	}
	return len(samples), true
}

// Err always returns nil; sources cannot fail.
func (s *Streamer) Err() error { return nil }

// RenderWAV writes frames frames of source as 16-bit stereo WAV.
func RenderWAV(w io.WriteSeeker, source Source, sampleRate, frames int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("render sample rate must be > 0: %d", sampleRate)
	}
	if frames < 0 {
		return fmt.Errorf("render frame count must be >= 0: %d", frames)
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(sampleRate),
		NumChannels: 2,
		Precision:   2,
	}
	if err := wav.Encode(w, beep.Take(frames, NewStreamer(source)), format); err != nil {
		return fmt.Errorf("render wav: %w", err)
	}
	return nil
}
