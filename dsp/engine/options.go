package engine

import (
	"github.com/cwbudde/algo-blockdsp/dsp/delay"
	"github.com/cwbudde/algo-blockdsp/dsp/param"
	"github.com/cwbudde/algo-blockdsp/dsp/scope"
)

const (
	defaultVoices        = 3
	defaultPitchWindowMs = 22.0
)

type config struct {
	voices        int
	scopeSize     int
	delayCapacity int
	pitchWindowMs float64
	controls      *param.Controls
}

// Option configures an Engine.
type Option func(*config)

// WithVoices sets the number of harmonic voices in poly mode.
func WithVoices(n int) Option {
	return func(c *config) { c.voices = n }
}

// WithScopeSize sets the scope history length in samples.
func WithScopeSize(n int) Option {
	return func(c *config) { c.scopeSize = n }
}

// WithDelayCapacity sets the delay line capacity in samples.
func WithDelayCapacity(n int) Option {
	return func(c *config) { c.delayCapacity = n }
}

// WithPitchWindowMs sets the pitch shifter grain window.
func WithPitchWindowMs(ms float64) Option {
	return func(c *config) { c.pitchWindowMs = ms }
}

// WithControls makes the engine read an existing control set, typically
// one already bound to command-line flags.
func WithControls(controls *param.Controls) Option {
	return func(c *config) { c.controls = controls }
}

func applyOptions(opts []Option) config {
	cfg := config{
		voices:        defaultVoices,
		scopeSize:     scope.DefaultSize,
		delayCapacity: delay.DefaultCapacity,
		pitchWindowMs: defaultPitchWindowMs,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.controls == nil {
		cfg.controls = param.NewControls()
	}
	return cfg
}
