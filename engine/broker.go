package engine

import (
	"sync"
	"time"

	"github.com/Niftys/dawduction"
)

type (
	// Broker is the message hub between the host-facing control side and the
	// render thread. Communication is one channel per recipient; the render
	// thread only ever does non-blocking sends and receives so it can never
	// deadlock against a stalled host.
	//
	// The broker also owns a sync.Pool of audio buffers so the player can
	// hand rendered audio to the host without allocating inside the
	// callback. Buffers borrowed with GetAudioBuffer must be returned with
	// PutAudioBuffer once consumed.
	Broker struct {
		ToEngine chan Msg
		ToHost   chan Notification

		CloseEngine    chan struct{}
		FinishedEngine chan struct{}

		bufferPool sync.Pool
	}
)

func NewBroker() *Broker {
	return &Broker{
		ToEngine:       make(chan Msg, 1024),
		ToHost:         make(chan Notification, 1024),
		CloseEngine:    make(chan struct{}, 1),
		FinishedEngine: make(chan struct{}),
		bufferPool:     sync.Pool{New: func() interface{} { return &dawduction.AudioBuffer{} }},
	}
}

// GetAudioBuffer returns an empty audio buffer from the pool.
func (b *Broker) GetAudioBuffer() *dawduction.AudioBuffer {
	return b.bufferPool.Get().(*dawduction.AudioBuffer)
}

// PutAudioBuffer resets a buffer's length, keeping its capacity, and returns
// it to the pool.
func (b *Broker) PutAudioBuffer(buf *dawduction.AudioBuffer) {
	if len(*buf) > 0 {
		*buf = (*buf)[:0]
	}
	b.bufferPool.Put(buf)
}

// TrySend sends a value to a channel if it has room. It is guaranteed to be
// non-blocking; it returns false if the value was dropped.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value arrives or the timeout elapses. ok is
// false on timeout or when the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
