// Package effects provides time-domain effect kernels built on the delay
// line.
//
// Effects in this package:
//   - Echo: fixed-tap echo with wet level and feedback.
//
// The grain pitch shifter lives in github.com/cwbudde/algo-blockdsp/dsp/effects/pitch.
//
// Effects have zero-allocation hot paths and support both single-sample
// and buffer-based processing.
package effects
