package dawduction

import "io"

type (
	// AudioBuffer is a buffer of stereo audio samples of variable length,
	// each sample being [left, right].
	AudioBuffer [][2]float32

	// AudioSource is a source of stereo audio. ReadAudio fills as much of
	// the buffer as it can and returns the number of frames read; it returns
	// io.EOF when depleted.
	AudioSource interface {
		ReadAudio(buffer AudioBuffer) (n int, err error)
	}

	// AudioContext represents the audio output device, and can play an
	// AudioSource through it.
	AudioContext interface {
		Play(r AudioSource) CloserWaiter
		Close() error
	}

	// CloserWaiter is the handle of ongoing playback: Close stops it, Wait
	// blocks until the source is depleted.
	CloserWaiter interface {
		io.Closer
		Wait()
	}

	audioBufferSource struct {
		buffer AudioBuffer
		pos    int
	}
)

// Source returns an AudioSource that reads from the buffer.
func (b AudioBuffer) Source() AudioSource {
	return &audioBufferSource{buffer: b}
}

// Mono averages the two channels into a mono signal.
func (b AudioBuffer) Mono() []float32 {
	ret := make([]float32, len(b))
	for i, frame := range b {
		ret[i] = (frame[0] + frame[1]) / 2
	}
	return ret
}

func (s *audioBufferSource) ReadAudio(buffer AudioBuffer) (int, error) {
	n := copy(buffer, s.buffer[s.pos:])
	s.pos += n
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
