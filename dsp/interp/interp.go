package interp

import "fmt"

// Mode selects how a fractional read position is resolved.
type Mode int

const (
	// ModeNearest rounds the position to the closest sample.
	ModeNearest Mode = iota
	// ModeLinear blends the two surrounding samples.
	ModeLinear
	// ModeHermite fits a cubic through the four surrounding samples.
	ModeHermite
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNearest:
		return "nearest"
	case ModeLinear:
		return "linear"
	case ModeHermite:
		return "hermite"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= ModeNearest && m <= ModeHermite
}

// Linear2 interpolates from x0 to x1 at t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
