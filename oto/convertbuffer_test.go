package oto

import (
	"bytes"
	"testing"

	"github.com/Niftys/dawduction"
)

func TestFloatFramesTo16BitLE(t *testing.T) {
	frames := dawduction.AudioBuffer{{0, 1}, {-1, 2}}
	got := FloatFramesTo16BitLE(frames, nil)
	want := []byte{
		0x00, 0x00, // 0
		0xff, 0x7f, // 1 -> 32767
		0x01, 0x80, // -1 -> -32767
		0xff, 0x7f, // 2 clamps to 32767
	}
	if !bytes.Equal(got, want) {
		t.Errorf("converted bytes = %x, want %x", got, want)
	}
}

func TestFloatFramesTo16BitLEReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, 64)
	got := FloatFramesTo16BitLE(dawduction.AudioBuffer{{0, 0}}, buf)
	if &got[0] != &buf[:1][0] {
		t.Errorf("conversion reallocated despite sufficient capacity")
	}
}
