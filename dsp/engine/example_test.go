package engine_test

import (
	"fmt"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
	"github.com/cwbudde/algo-blockdsp/dsp/engine"
)

func ExampleEngine() {
	e, err := engine.NewWithOptions(
		[]core.ProcessorOption{core.WithSampleRate(48000), core.WithBlockSize(256)},
		engine.WithVoices(3),
	)
	if err != nil {
		panic(err)
	}

	c := e.Controls()
	c.Mode.Store(float64(engine.ModePoly))
	c.Frequency.Store(220)
	c.VolumeDB.Store(-6)

	out := make([]float64, 256)
	e.ProcessBlock(out, nil)

	fmt.Println(e.Mode(), e.Clips())
	// Output: poly 0
}
