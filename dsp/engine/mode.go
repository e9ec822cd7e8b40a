package engine

import (
	"fmt"
	"strings"
)

// Mode selects what the engine renders.
type Mode int

const (
	// ModeThrough copies the input block to the output.
	ModeThrough Mode = iota
	// ModeOscillator plays the single oscillator.
	ModeOscillator
	// ModePoly plays the harmonic voice bank.
	ModePoly
	// ModeDelay adds an echo of the source.
	ModeDelay
	// ModePitch runs the source through the pitch shifter.
	ModePitch
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeThrough:
		return "through"
	case ModeOscillator:
		return "osc"
	case ModePoly:
		return "poly"
	case ModeDelay:
		return "delay"
	case ModePitch:
		return "pitch"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the mode with the given name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "through", "thru":
		return ModeThrough, nil
	case "osc", "oscillator":
		return ModeOscillator, nil
	case "poly":
		return ModePoly, nil
	case "delay":
		return ModeDelay, nil
	case "pitch":
		return ModePitch, nil
	default:
		return 0, fmt.Errorf("unknown engine mode: %q", name)
	}
}

func (m Mode) valid() bool {
	return m >= ModeThrough && m <= ModePitch
}
