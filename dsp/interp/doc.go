// Package interp provides interpolation primitives used by delay-based DSP blocks.
//
// Available methods, from cheapest to highest quality:
//
//   - [ModeNearest]: round to the closest stored sample
//   - [Linear2]:     2-point linear interpolation
//   - [Hermite4]:    4-point cubic Hermite
//
// The [Mode] enum lets delay readers select the algorithm at construction time.
package interp
