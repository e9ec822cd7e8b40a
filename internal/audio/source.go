// Package audio connects a block source to playback and file output.
//
// Live output goes through an ebiten audio player fed by [StreamReader];
// offline output goes through a beep [Streamer] and the beep WAV encoder.
// Both pull mono blocks from a [Source] and duplicate them onto two
// channels.
package audio

// Source renders mono blocks. dsp/engine.Engine satisfies it. in is nil
// because the transports have no capture path.
type Source interface {
	ProcessBlock(out, in []float64)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(out, in []float64)

// ProcessBlock calls f.
func (f SourceFunc) ProcessBlock(out, in []float64) { f(out, in) }
