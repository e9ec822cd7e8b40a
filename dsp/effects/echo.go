package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-blockdsp/dsp/delay"
)

// MaxEchoFeedback is the largest accepted feedback gain.
const MaxEchoFeedback = 0.95

// Echo adds a delayed copy of the input to the dry signal:
//
//	y[n] = x[n] + mix*w[n-d],  w[n] = x[n] + feedback*w[n-d]
//
// With feedback 0 the stored signal is the plain input, so the output is
// x[n] + mix*x[n-d]. A delay of 0 samples yields the dry input.
type Echo struct {
	line     *delay.Line
	delay    int
	mix      float64
	feedback float64
}

// NewEcho returns an echo backed by a delay line of the given capacity.
// The delay starts at 0 and the mix at 1.
func NewEcho(capacity int) (*Echo, error) {
	line, err := delay.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("echo: %w", err)
	}

	return &Echo{line: line, mix: 1}, nil
}

// Capacity returns the delay line length in samples.
func (e *Echo) Capacity() int { return e.line.Len() }

// Delay returns the echo delay in samples.
func (e *Echo) Delay() int { return e.delay }

// Mix returns the wet level.
func (e *Echo) Mix() float64 { return e.mix }

// Feedback returns the feedback gain.
func (e *Echo) Feedback() float64 { return e.feedback }

// SetDelay sets the echo delay in samples, in [0, Capacity()-1].
func (e *Echo) SetDelay(samples int) error {
	if samples < 0 || samples >= e.line.Len() {
		return fmt.Errorf("echo delay must be in [0, %d]: %d", e.line.Len()-1, samples)
	}
	e.delay = samples
	return nil
}

// SetMix sets the wet level in [0, 1].
func (e *Echo) SetMix(mix float64) error {
	if mix < 0 || mix > 1 || math.IsNaN(mix) {
		return fmt.Errorf("echo mix must be in [0, 1]: %f", mix)
	}
	e.mix = mix
	return nil
}

// SetFeedback sets the feedback gain in [0, MaxEchoFeedback].
func (e *Echo) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > MaxEchoFeedback || math.IsNaN(feedback) {
		return fmt.Errorf("echo feedback must be in [0, %g]: %f", MaxEchoFeedback, feedback)
	}
	e.feedback = feedback
	return nil
}

// Reset clears the delay history.
func (e *Echo) Reset() {
	e.line.Reset()
}

// ProcessSample processes one sample.
func (e *Echo) ProcessSample(input float64) float64 {
	wet := 0.0
	if e.delay > 0 {
		wet = e.line.Pop(e.delay)
	}
	e.line.Push(input + e.feedback*wet)

	return input + e.mix*wet
}

// ProcessInPlace applies the echo to buf in place.
func (e *Echo) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = e.ProcessSample(buf[i])
	}
}
