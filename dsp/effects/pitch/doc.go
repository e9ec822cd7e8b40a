// Package pitch provides a real-time time-domain pitch shifter.
//
// [PitchShifter] keeps a sliding history of its input and reads it through
// two taps half a grain apart. The tap offsets sweep across the window at
// a rate set by the pitch ratio, and each tap is faded with a raised-cosine
// window of its own position so that one tap is silent whenever it jumps.
// The two gains always sum to one.
package pitch
