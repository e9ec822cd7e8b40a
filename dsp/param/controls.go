package param

import "math"

// Ranges of the engine controls.
const (
	MinFrequency = 1.0
	MaxFrequency = 20000.0

	MinPitchRatio = 0.25
	MaxPitchRatio = 4.0

	MinVolumeDB = -96.0
	MaxVolumeDB = 6.0

	MaxDelaySamples = 95999
	MaxFeedback     = 0.95

	MinSineOrder = 1
	MaxSineOrder = 21

	// Mode and waveform hold the integer value of engine.Mode and osc.Waveform.
	MaxMode     = 4
	MaxWaveform = 2
)

// Controls is the set of live parameters read by the engine once per block.
type Controls struct {
	Mode         *Value
	Waveform     *Value
	Frequency    *Value
	PitchRatio   *Value
	VolumeDB     *Value
	DelaySamples *Value
	DelayMix     *Value
	Feedback     *Value
	SineOrder    *Value
	Muted        *Flag
}

// Snapshot is a plain copy of Controls taken at one instant.
type Snapshot struct {
	Mode         int
	Waveform     int
	Frequency    float64
	PitchRatio   float64
	VolumeDB     float64
	DelaySamples int
	DelayMix     float64
	Feedback     float64
	SineOrder    int
	Muted        bool
}

// NewControls returns controls at their defaults: through mode, sine at
// 440 Hz, unity pitch, 0 dB, half a second of delay at 48 kHz mixed at 0.5
// without feedback.
func NewControls() *Controls {
	return &Controls{
		Mode:         mustValue("mode", "", 0, MaxMode, 0),
		Waveform:     mustValue("waveform", "", 0, MaxWaveform, 0),
		Frequency:    mustValue("frequency", "Hz", MinFrequency, MaxFrequency, 440),
		PitchRatio:   mustValue("pitch", "", MinPitchRatio, MaxPitchRatio, 1),
		VolumeDB:     mustValue("volume", "dB", MinVolumeDB, MaxVolumeDB, 0),
		DelaySamples: mustValue("delay", "samples", 0, MaxDelaySamples, 24000),
		DelayMix:     mustValue("mix", "", 0, 1, 0.5),
		Feedback:     mustValue("feedback", "", 0, MaxFeedback, 0),
		SineOrder:    mustValue("order", "", MinSineOrder, MaxSineOrder, 11),
		Muted:        NewFlag("mute", false),
	}
}

// Snapshot reads every control. Integer controls are rounded, and the sine
// order is forced odd by rounding down to the next odd number.
func (c *Controls) Snapshot() Snapshot {
	order := c.SineOrder.Int()
	if order%2 == 0 {
		order--
	}

	return Snapshot{
		Mode:         c.Mode.Int(),
		Waveform:     c.Waveform.Int(),
		Frequency:    c.Frequency.Load(),
		PitchRatio:   c.PitchRatio.Load(),
		VolumeDB:     c.VolumeDB.Load(),
		DelaySamples: c.DelaySamples.Int(),
		DelayMix:     c.DelayMix.Load(),
		Feedback:     c.Feedback.Load(),
		SineOrder:    max(order, MinSineOrder),
		Muted:        c.Muted.Load(),
	}
}

// SetPitchSemitones stores the pitch ratio for a shift in semitones.
func (c *Controls) SetPitchSemitones(semitones float64) {
	c.PitchRatio.Store(math.Pow(2, semitones/12))
}

// Reset restores every control to its default.
func (c *Controls) Reset() {
	for _, v := range []*Value{
		c.Mode, c.Waveform, c.Frequency, c.PitchRatio, c.VolumeDB,
		c.DelaySamples, c.DelayMix, c.Feedback, c.SineOrder,
	} {
		v.Reset()
	}
	c.Muted.Store(false)
}
