package dawduction

import (
	"io"
	"testing"
)

func TestAudioBufferSource(t *testing.T) {
	src := AudioBuffer{{1, 1}, {2, 2}, {3, 3}}.Source()
	out := make(AudioBuffer, 2)
	n, err := src.ReadAudio(out)
	if n != 2 || err != nil {
		t.Fatalf("first read = %d, %v", n, err)
	}
	if out[0][0] != 1 || out[1][0] != 2 {
		t.Errorf("first read returned %v", out)
	}
	n, err = src.ReadAudio(out)
	if n != 1 || err != nil {
		t.Fatalf("second read = %d, %v", n, err)
	}
	if out[0][0] != 3 {
		t.Errorf("second read returned %v", out[:n])
	}
	if _, err := src.ReadAudio(out); err != io.EOF {
		t.Errorf("depleted source returned %v, want io.EOF", err)
	}
}

func TestAudioBufferMono(t *testing.T) {
	mono := AudioBuffer{{1, 0}, {-1, -1}, {0.25, 0.75}}.Mono()
	want := []float32{0.5, -1, 0.5}
	for i, v := range want {
		if mono[i] != v {
			t.Errorf("mono[%d] = %v, want %v", i, mono[i], v)
		}
	}
}
