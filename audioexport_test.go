package dawduction

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func exportBuffer() AudioBuffer {
	return AudioBuffer{{0, 0}, {0.5, -0.5}, {1, -1}, {2, -2}} // last frame clips
}

func TestWavPCM16(t *testing.T) {
	buffer := exportBuffer()
	wav, err := buffer.Wav(44100, true)
	if err != nil {
		t.Fatalf("Wav: %v", err)
	}
	if want := 44 + 4*len(buffer); len(wav) != want {
		t.Errorf("wav length = %d, want %d", len(wav), want)
	}
	if !bytes.Equal(wav[:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Errorf("bad RIFF header: %q", wav[:12])
	}
	if format := binary.LittleEndian.Uint16(wav[20:22]); format != 1 {
		t.Errorf("wave format = %d, want 1 (PCM)", format)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 44100 {
		t.Errorf("sample rate = %d", rate)
	}
	// Out-of-range samples clamp instead of wrapping.
	last := int16(binary.LittleEndian.Uint16(wav[len(wav)-4:]))
	if last != 32767 {
		t.Errorf("clipped sample = %d, want 32767", last)
	}
}

func TestWavFloat32(t *testing.T) {
	buffer := exportBuffer()
	wav, err := buffer.Wav(48000, false)
	if err != nil {
		t.Fatalf("Wav: %v", err)
	}
	if want := 58 + 8*len(buffer); len(wav) != want {
		t.Errorf("wav length = %d, want %d", len(wav), want)
	}
	if format := binary.LittleEndian.Uint16(wav[20:22]); format != 3 {
		t.Errorf("wave format = %d, want 3 (IEEE float)", format)
	}
	if !bytes.Contains(wav[:58], []byte("fact")) {
		t.Errorf("float wav missing fact chunk")
	}
}

func TestRawPCM16(t *testing.T) {
	raw, err := exportBuffer().Raw(true)
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if want := 4 * len(exportBuffer()); len(raw) != want {
		t.Errorf("raw length = %d, want %d", len(raw), want)
	}
	if v := int16(binary.LittleEndian.Uint16(raw[4:6])); v != 16383 {
		t.Errorf("sample 0.5 encoded as %d, want 16383", v)
	}
}
