// Package window generates analysis windows for spectral measurement.
//
// All supported windows are sums of cosines, evaluated either symmetric
// (first and last coefficient equal) or periodic (suited to FFT frames).
package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function. The zero value is Hann.
type Type int

const (
	TypeHann Type = iota
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris
	TypeFlatTop
	TypeRectangular
)

var (
	hannCoeffs           = []float64{0.5, -0.5}
	hammingCoeffs        = []float64{0.54, -0.46}
	blackmanCoeffs       = []float64{0.42, -0.5, 0.08}
	blackmanHarrisCoeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}
	flatTopCoeffs        = []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}
	rectangularCoeffs    = []float64{1}
)

var typeNames = [...]string{"hann", "hamming", "blackman", "blackman-harris", "flattop", "rectangular"}

// String returns the lower-case window name.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("window(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType returns the window named s, ignoring case.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown window %q", s)
}

func (t Type) coeffs() ([]float64, error) {
	switch t {
	case TypeHann:
		return hannCoeffs, nil
	case TypeHamming:
		return hammingCoeffs, nil
	case TypeBlackman:
		return blackmanCoeffs, nil
	case TypeBlackmanHarris:
		return blackmanHarrisCoeffs, nil
	case TypeFlatTop:
		return flatTopCoeffs, nil
	case TypeRectangular:
		return rectangularCoeffs, nil
	default:
		return nil, fmt.Errorf("unknown window type: %d", int(t))
	}
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic evaluates the window over size+1 points and drops the last,
// the usual choice for FFT analysis frames.
func WithPeriodic() Option {
	return func(c *config) { c.periodic = true }
}

// Generate returns size coefficients of window t.
func Generate(t Type, size int, opts ...Option) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be > 0: %d", size)
	}

	coeffs, err := t.coeffs()
	if err != nil {
		return nil, err
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]float64, size)
	if size == 1 {
		out[0] = 1
		return out, nil
	}

	den := float64(size - 1)
	if cfg.periodic {
		den = float64(size)
	}

	for n := range out {
		out[n] = cosineSum(float64(n)/den, coeffs)
	}

	return out, nil
}

// Apply multiplies buf by coefficients of the same length.
func Apply(buf, coeffs []float64) error {
	if len(buf) != len(coeffs) {
		return fmt.Errorf("window length mismatch: %d samples, %d coefficients", len(buf), len(coeffs))
	}
	vecmath.MulBlockInPlace(buf, coeffs)
	return nil
}

// CoherentGain returns sum(w)/N, the window's response to DC.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	return sum / float64(len(coeffs))
}

// ENBW returns the equivalent noise bandwidth in bins.
func ENBW(coeffs []float64) float64 {
	sum, sumSq := 0.0, 0.0
	for _, c := range coeffs {
		sum += c
		sumSq += c * c
	}
	if sum == 0 {
		return 0
	}
	return float64(len(coeffs)) * sumSq / (sum * sum)
}

func cosineSum(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x
	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}
	return sum
}
