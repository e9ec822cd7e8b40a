// Package engine drives the DSP blocks from an audio callback.
//
// An [Engine] owns one instance of every processor (oscillator, harmonic
// poly bank, echo, pitch shifter) and a scope history. Each call to
// [Engine.ProcessBlock] reads the live [param.Controls] once, renders the
// active mode, applies a ramped output gain, feeds the scope and updates
// the RMS meter and clip counter. After construction nothing allocates.
//
// Modes:
//   - ModeThrough passes the input unchanged.
//   - ModeOscillator plays a single oscillator.
//   - ModePoly plays the harmonic bank.
//   - ModeDelay adds an echo of the source, with optional feedback.
//   - ModePitch pitch-shifts the source.
//
// The delay and pitch modes transform the input block. When the caller has
// no input (nil), they transform the oscillator instead.
package engine
