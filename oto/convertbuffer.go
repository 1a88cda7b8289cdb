package oto

import (
	"math"

	"github.com/Niftys/dawduction"
)

// FloatFramesTo16BitLE appends the stereo frames to out as interleaved 16-bit
// little-endian PCM, clamping out-of-range samples. Passing out with its
// length set to zero reuses its capacity across calls.
func FloatFramesTo16BitLE(frames dawduction.AudioBuffer, out []byte) []byte {
	for _, frame := range frames {
		for _, v := range frame {
			var uv int16
			if v < -1.0 {
				uv = -math.MaxInt16
			} else if v > 1.0 {
				uv = math.MaxInt16
			} else {
				uv = int16(v * math.MaxInt16)
			}
			out = append(out, byte(uv), byte(uv>>8))
		}
	}
	return out
}
