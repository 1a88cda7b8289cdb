package engine

import (
	"testing"
	"time"
)

func TestAudioBufferPoolResetsLength(t *testing.T) {
	broker := NewBroker()
	buf := broker.GetAudioBuffer()
	if len(*buf) != 0 {
		t.Fatalf("fresh pool buffer has %d frames", len(*buf))
	}
	*buf = append(*buf, [2]float32{1, 1}, [2]float32{2, 2})
	broker.PutAudioBuffer(buf)
	if got := broker.GetAudioBuffer(); len(*got) != 0 {
		t.Errorf("recycled pool buffer has %d frames, want 0", len(*got))
	}
}

func TestTimeoutReceive(t *testing.T) {
	c := make(chan int, 1)
	c <- 7
	if v, ok := TimeoutReceive(c, time.Second); !ok || v != 7 {
		t.Errorf("TimeoutReceive = %v, %v", v, ok)
	}
	if _, ok := TimeoutReceive(c, time.Millisecond); ok {
		t.Errorf("TimeoutReceive reported a value from an empty channel")
	}
	close(c)
	if _, ok := TimeoutReceive(c, time.Second); ok {
		t.Errorf("TimeoutReceive reported a value from a closed channel")
	}
}
