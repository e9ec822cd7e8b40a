// Package osc provides phase-accumulator oscillators for block-rate synthesis.
//
// Included generators:
//   - Phasor: bare phase accumulator producing a ramp in [0, 1).
//   - Oscillator: Phasor plus a waveform mapping (sine, sawtooth, triangle).
//   - Poly: harmonic bank of oscillators summed and phase re-locked to the
//     fundamental once per cycle.
//
// All generators advance their phase before mapping it, so a parameter
// change becomes audible on the sample after the call that made it.
// Nothing in this package allocates once construction (and Poly.Prepare)
// has returned.
package osc
