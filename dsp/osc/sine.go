package osc

import (
	"fmt"
	"math"
)

const (
	// DefaultSineOrder is the highest power kept in the sine series.
	DefaultSineOrder = 11
	// MaxSineOrder bounds the series length.
	MaxSineOrder = 21

	maxSineTerms = (MaxSineOrder + 1) / 2
)

// sineSeries holds the Taylor coefficients (-1)^k / (2k+1)! of sin(x)
// around 0, truncated after x^order.
type sineSeries struct {
	order  int
	terms  int
	coeffs [maxSineTerms]float64
}

func validateSineOrder(order int) error {
	if order < 1 || order > MaxSineOrder || order%2 == 0 {
		return fmt.Errorf("sine order must be odd and in [1, %d]: %d", MaxSineOrder, order)
	}
	return nil
}

func (s *sineSeries) setOrder(order int) error {
	if err := validateSineOrder(order); err != nil {
		return err
	}

	s.order = order
	s.terms = (order + 1) / 2

	fact := 1.0
	sign := 1.0
	for k := range s.terms {
		n := 2*k + 1
		if k > 0 {
			fact *= float64(n-1) * float64(n)
		}
		s.coeffs[k] = sign / fact
		sign = -sign
	}
	return nil
}

// eval returns the truncated series at x using Horner's scheme in x².
func (s *sineSeries) eval(x float64) float64 {
	x2 := x * x
	sum := s.coeffs[s.terms-1]
	for k := s.terms - 2; k >= 0; k-- {
		sum = sum*x2 + s.coeffs[k]
	}
	return sum * x
}

// sineOfPhase maps phase onto x = 2πp − π and evaluates the series.
// x is folded into [-π/2, π/2] first (sin(π−x) = sin(x)); the short series
// loses accuracy quickly past the quarter wave.
func (s *sineSeries) sineOfPhase(phase float64) float64 {
	x := phase*2*math.Pi - math.Pi
	if x > math.Pi/2 {
		x = math.Pi - x
	} else if x < -math.Pi/2 {
		x = -math.Pi - x
	}
	return s.eval(x)
}

// TaylorSine evaluates x − x³/3! + x⁵/5! − … ± x^order/order! directly,
// without range reduction. order must be odd; invalid orders return NaN.
func TaylorSine(x float64, order int) float64 {
	var s sineSeries
	if err := s.setOrder(order); err != nil {
		return math.NaN()
	}
	return s.eval(x)
}
