package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/cwbudde/algo-blockdsp/dsp/core"
)

// bytesPerFrame is two float32 channels.
const bytesPerFrame = 8

// StreamReader is an io.Reader producing interleaved stereo float32
// little-endian PCM, the format ebiten's NewPlayerF32 expects. Read must be
// called from one goroutine; Close may be called from any.
type StreamReader struct {
	source Source
	mono   []float64
	closed atomic.Bool
}

// NewStreamReader returns a reader pulling from source.
func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

// Read renders len(p)/8 frames. Trailing bytes that do not form a whole
// frame are left untouched.
func (r *StreamReader) Read(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, io.EOF
	}

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	r.mono = core.EnsureLen(r.mono, frames)
	r.source.ProcessBlock(r.mono, nil)

	for i, x := range r.mono {
		u := math.Float32bits(float32(x))
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame:], u)
		binary.LittleEndian.PutUint32(p[i*bytesPerFrame+4:], u)
	}
	return frames * bytesPerFrame, nil
}

// Close makes further reads return io.EOF.
func (r *StreamReader) Close() error {
	r.closed.Store(true)
	return nil
}

// Player plays a Source through the shared ebiten audio context.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer opens a player at sampleRate. A positive bufferSize overrides
// ebiten's default output buffer and so the output latency.
func NewPlayer(sampleRate int, source Source, bufferSize time.Duration) (*Player, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio sample rate must be > 0: %d", sampleRate)
	}

	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}

	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("audio player: %w", err)
	}
	if bufferSize > 0 {
		pl.SetBufferSize(bufferSize)
	}

	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }

// IsPlaying reports whether the player is running.
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Position returns the current playback position.
func (p *Player) Position() time.Duration { return p.player.Position() }

// Stop pauses and releases the player.
func (p *Player) Stop() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("audio player close: %w", err)
	}
	return p.reader.Close()
}
