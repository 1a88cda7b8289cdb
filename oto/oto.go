// Package oto adapts the ebitengine/oto/v3 audio backend to the
// dawduction.AudioContext interface.
package oto

import (
	"fmt"
	"time"

	"github.com/Niftys/dawduction"
	"github.com/ebitengine/oto/v3"
)

type (
	// Context wraps an oto/v3 context as a dawduction.AudioContext.
	Context struct {
		context    *oto.Context
		sampleRate int
	}

	playback struct {
		player *oto.Player
	}

	// sourceReader pulls float32 stereo frames from an AudioSource and hands
	// them to oto as interleaved 16-bit little-endian PCM.
	sourceReader struct {
		source    dawduction.AudioSource
		scratch   dawduction.AudioBuffer
		tmpBuffer []byte
		err       error
	}
)

// bytesPerFrame is two 16-bit samples, left and right.
const bytesPerFrame = 4

// NewContext opens the audio device and blocks until it is ready to play.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate}, nil
}

// Play implements dawduction.AudioContext. Playback runs until the source
// returns an error (io.EOF included) or the returned handle is closed.
func (c *Context) Play(r dawduction.AudioSource) dawduction.CloserWaiter {
	player := c.context.NewPlayer(&sourceReader{source: r})
	player.Play()
	return &playback{player: player}
}

// Close implements dawduction.AudioContext. oto contexts cannot be destroyed,
// only suspended.
func (c *Context) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (p *playback) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func (p *playback) Wait() {
	for p.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}

// Read implements io.Reader for the oto player. oto sizes its reads by its
// internal buffering; a partial source read just yields a short byte count
// and oto calls again.
func (s *sourceReader) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(s.scratch) < frames {
		s.scratch = make(dawduction.AudioBuffer, frames)
	}
	n, err := s.source.ReadAudio(s.scratch[:frames])
	s.tmpBuffer = FloatFramesTo16BitLE(s.scratch[:n], s.tmpBuffer[:0])
	copy(p, s.tmpBuffer)
	if n == 0 && err != nil {
		s.err = err
		return 0, err
	}
	return n * bytesPerFrame, nil
}
