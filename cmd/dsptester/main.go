// Command dsptester runs the block DSP engine live or renders it to a file.
//
// Usage:
//
//	dsptester [flags]
//
// Examples:
//
//	dsptester -mode osc -waveform saw -freq 220
//	dsptester -mode poly -voices 5 -freq 110 -volume -12
//	dsptester -mode pitch -freq 500 -pitch 1.5 -duration 10s
//	dsptester -mode delay -delay 12000 -mix 0.6 -feedback 0.4 -render echo.wav -duration 3s
//
// Live playback runs until interrupted or until -duration elapses and logs
// the output level, clip count and dominant frequency every -meter period.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/bits"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
	"github.com/cwbudde/algo-blockdsp/dsp/engine"
	"github.com/cwbudde/algo-blockdsp/dsp/osc"
	"github.com/cwbudde/algo-blockdsp/dsp/param"
	"github.com/cwbudde/algo-blockdsp/dsp/window"
	"github.com/cwbudde/algo-blockdsp/internal/audio"
	"github.com/cwbudde/algo-blockdsp/measure/pitch"
)

const (
	defaultRenderDuration = 5 * time.Second
	meterFFTSize          = 8192
)

type options struct {
	sampleRate int
	blockSize  int
	voices     int
	mode       engine.Mode
	waveform   osc.Waveform
	duration   time.Duration
	buffer     time.Duration
	meter      time.Duration
	window     window.Type
	renderPath string
}

func main() {
	log.SetFlags(log.Ltime)

	controls := param.NewControls()
	opts, err := parseFlags(flag.CommandLine, os.Args[1:], controls)
	if err != nil {
		log.Fatal(err)
	}

	eng, err := newEngine(opts, controls)
	if err != nil {
		log.Fatal(err)
	}

	if opts.renderPath != "" {
		if err := render(eng, opts); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := play(ctx, eng, opts); err != nil {
		log.Fatal(err)
	}
}

func parseFlags(fs *flag.FlagSet, args []string, controls *param.Controls) (options, error) {
	var (
		opts     options
		mode     string
		waveform string
		win      string
	)

	fs.IntVar(&opts.sampleRate, "sample-rate", 48000, "output sample rate in Hz")
	fs.IntVar(&opts.blockSize, "block", 256, "processing block size in samples")
	fs.IntVar(&opts.voices, "voices", 3, "harmonic voices in poly mode")
	fs.StringVar(&mode, "mode", "osc", "engine mode: through|osc|poly|delay|pitch")
	fs.StringVar(&waveform, "waveform", "sine", "oscillator waveform: sine|saw|triangle")
	fs.DurationVar(&opts.duration, "duration", 0, "stop after this long (0 = until interrupted; render default 5s)")
	fs.DurationVar(&opts.buffer, "buffer", 50*time.Millisecond, "output buffer size")
	fs.DurationVar(&opts.meter, "meter", time.Second, "meter log interval (0 disables)")
	fs.StringVar(&win, "window", "hann", "meter analysis window: hann|hamming|blackman|blackman-harris|flattop|rectangular")
	fs.StringVar(&opts.renderPath, "render", "", "write a WAV file instead of playing")

	fs.Var(controls.Frequency, "freq", "oscillator frequency in Hz")
	fs.Var(controls.PitchRatio, "pitch", "pitch shift ratio (0.25..4)")
	fs.Var(controls.VolumeDB, "volume", "output volume in dB (-96..6)")
	fs.Var(controls.DelaySamples, "delay", "delay time in samples")
	fs.Var(controls.DelayMix, "mix", "delay wet level (0..1)")
	fs.Var(controls.Feedback, "feedback", "delay feedback (0..0.95)")
	fs.Var(controls.SineOrder, "order", "Taylor sine order (odd, 1..21)")
	fs.Var(controls.Muted, "mute", "start muted")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	m, err := engine.ParseMode(mode)
	if err != nil {
		return options{}, err
	}
	w, err := osc.ParseWaveform(waveform)
	if err != nil {
		return options{}, err
	}
	wt, err := window.ParseType(win)
	if err != nil {
		return options{}, err
	}
	if opts.duration < 0 {
		return options{}, fmt.Errorf("duration must be >= 0: %s", opts.duration)
	}

	opts.mode = m
	opts.waveform = w
	opts.window = wt
	controls.Mode.Store(float64(m))
	controls.Waveform.Store(float64(w))

	return opts, nil
}

func newEngine(opts options, controls *param.Controls) (*engine.Engine, error) {
	return engine.NewWithOptions(
		[]core.ProcessorOption{
			core.WithSampleRate(float64(opts.sampleRate)),
			core.WithBlockSize(opts.blockSize),
		},
		engine.WithVoices(opts.voices),
		engine.WithControls(controls),
	)
}

func render(eng *engine.Engine, opts options) error {
	duration := opts.duration
	if duration == 0 {
		duration = defaultRenderDuration
	}
	frames := int(math.Round(duration.Seconds() * float64(opts.sampleRate)))

	f, err := os.Create(opts.renderPath)
	if err != nil {
		return err
	}

	if err := audio.RenderWAV(f, eng, opts.sampleRate, frames); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	log.Printf("wrote %s: %d frames, mode %s, last block %.1f dB, %d clips",
		opts.renderPath, frames, eng.Mode(), eng.MeterDB(), eng.Clips())
	return nil
}

func play(ctx context.Context, eng *engine.Engine, opts options) error {
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	player, err := audio.NewPlayer(opts.sampleRate, eng, opts.buffer)
	if err != nil {
		return err
	}
	player.Play()
	log.Printf("playing %s at %d Hz, block %d", opts.mode, opts.sampleRate, opts.blockSize)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		log.Printf("stopping after %s, %d clips", player.Position().Round(time.Millisecond), eng.Clips())
		return player.Stop()
	})
	if opts.meter > 0 {
		g.Go(func() error {
			return meterLoop(ctx, eng, opts.meter, opts.window)
		})
	}

	return g.Wait()
}

func meterLoop(ctx context.Context, eng *engine.Engine, interval time.Duration, win window.Type) error {
	// Largest power of two the scope can fill.
	size := 1 << (bits.Len(uint(min(meterFFTSize, eng.Scope().Len()))) - 1)

	analyzer, err := pitch.NewAnalyzer(pitch.Config{
		SampleRate: eng.SampleRate(),
		FFTSize:    size,
		Window:     win,
	})
	if err != nil {
		return err
	}

	buf := make([]float64, size)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res := analyzer.Analyze(eng.Scope().Latest(buf))
			log.Printf("%-7s %6.1f dB  peak %7.1f Hz at %6.1f dB  clips %d",
				eng.Mode(), eng.MeterDB(), res.Frequency, core.LinearToDB(res.Amplitude), eng.Clips())
		}
	}
}
