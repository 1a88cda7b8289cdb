package engine

import (
	"testing"

	"github.com/Niftys/dawduction"
)

// playerProject is a one-beat kick loop at 60 BPM: one event at beat 0, one
// second per loop at 44.1 kHz.
func playerProject() *dawduction.Project {
	return &dawduction.Project{
		BPM: 60,
		Tracks: []dawduction.Track{{
			ID:      "kick",
			Kind:    dawduction.Kick,
			Volume:  1,
			Pattern: &dawduction.PatternNode{ID: "n1", Division: 1, Velocity: 1},
		}},
		BaseMeterTrackID: "kick",
	}
}

func startedPlayer(t *testing.T, project *dawduction.Project) (*Player, *Broker) {
	t.Helper()
	broker := NewBroker()
	player := NewPlayer(broker, 44100)
	broker.ToEngine <- LoadProject{Project: project}
	broker.ToEngine <- SetTransport{State: TransportPlay, Seek: true}
	return player, broker
}

func TestPlayerPlaysPatternLoop(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 4410)
	player.Process(buffer)

	if !bufferHasSignal(buffer) {
		t.Errorf("playing a kick pattern produced silence")
	}
	var ready, update, position bool
	for _, n := range drainNotifications(broker) {
		switch n := n.(type) {
		case Ready:
			ready = true
		case PlaybackUpdate:
			update = true
			if len(n.FiredEventIDs) != 1 || n.FiredEventIDs[0] != "n1" {
				t.Errorf("fired event ids = %v, want [n1]", n.FiredEventIDs)
			}
		case PlaybackPosition:
			position = true
			if !n.Playing {
				t.Errorf("position report says not playing")
			}
		}
	}
	if !ready {
		t.Errorf("no Ready after LoadProject")
	}
	if !update {
		t.Errorf("no PlaybackUpdate for the fired event")
	}
	if !position {
		t.Errorf("no PlaybackPosition report")
	}
}

func TestPlayerFiresOncePerLoop(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 44100)
	player.Process(buffer) // loop 1, wraps at the end
	player.Process(buffer) // loop 2

	updates := 0
	for _, n := range drainNotifications(broker) {
		if _, ok := n.(PlaybackUpdate); ok {
			updates++
		}
	}
	if updates != 2 {
		t.Errorf("got %d playback updates over two loops, want 2", updates)
	}
}

func TestPlayerSilentWithoutProject(t *testing.T) {
	player := NewPlayer(NewBroker(), 44100)
	buffer := make(dawduction.AudioBuffer, 512)
	buffer[0] = [2]float32{0.5, 0.5} // stale data must be cleared
	player.Process(buffer)
	if bufferHasSignal(buffer) {
		t.Errorf("player without a project left signal in the buffer")
	}
}

func TestPlayerPauseHoldsPosition(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 4410)
	player.Process(buffer)
	beatBefore := player.beat(player.samplesPerBeat())

	broker.ToEngine <- SetTransport{State: TransportPause}
	player.Process(buffer)
	if got := player.beat(player.samplesPerBeat()); got != beatBefore {
		t.Errorf("pause moved the position from %v to %v", beatBefore, got)
	}

	broker.ToEngine <- SetTransport{State: TransportStop}
	player.Process(buffer)
	if got := player.beat(player.samplesPerBeat()); got != 0 {
		t.Errorf("stop left the position at %v, want 0", got)
	}
}

func TestPlayerResumeWithoutSeekKeepsPosition(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 4410)
	player.Process(buffer)
	broker.ToEngine <- SetTransport{State: TransportPause}
	player.Process(buffer)
	beatBefore := player.beat(player.samplesPerBeat())

	// A zero-value Position must not rewind the paused transport.
	broker.ToEngine <- SetTransport{State: TransportPlay}
	player.processMessages()
	if got := player.beat(player.samplesPerBeat()); got != beatBefore {
		t.Errorf("resume moved the position from %v to %v", beatBefore, got)
	}

	broker.ToEngine <- SetTransport{State: TransportPlay, Seek: true, Position: 0.5}
	player.processMessages()
	if got := player.beat(player.samplesPerBeat()); got != 0.5 {
		t.Errorf("explicit seek landed at %v, want 0.5", got)
	}
}

func TestPlayerStopsAfterCloseEngine(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 512)
	buffer[0] = [2]float32{0.5, 0.5} // stale data must be cleared
	broker.CloseEngine <- struct{}{}
	player.Process(buffer)
	select {
	case <-broker.FinishedEngine:
	default:
		t.Fatalf("engine did not acknowledge the close request")
	}
	if bufferHasSignal(buffer) {
		t.Errorf("closed engine left signal in the buffer")
	}
	buffer[0] = [2]float32{0.5, 0.5}
	player.Process(buffer)
	if bufferHasSignal(buffer) {
		t.Errorf("engine rendered again after closing")
	}
}

func TestPlayerPublishesRenderedAudio(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 512)
	player.Process(buffer)
	found := false
	for _, n := range drainNotifications(broker) {
		if ra, ok := n.(RenderedAudio); ok {
			found = true
			if len(*ra.Buffer) != len(buffer) {
				t.Errorf("shared %d frames, want %d", len(*ra.Buffer), len(buffer))
			}
			broker.PutAudioBuffer(ra.Buffer)
		}
	}
	if !found {
		t.Errorf("no RenderedAudio published for the callback")
	}
}

func TestPlayerRefiresAfterStop(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 4410)
	player.Process(buffer)
	broker.ToEngine <- SetTransport{State: TransportStop}
	player.Process(buffer)
	drainNotifications(broker)

	broker.ToEngine <- SetTransport{State: TransportPlay}
	player.Process(buffer)
	refired := false
	for _, n := range drainNotifications(broker) {
		if _, ok := n.(PlaybackUpdate); ok {
			refired = true
		}
	}
	if !refired {
		t.Errorf("event did not refire after stop and replay")
	}
}

func TestPlayerTempoChangeKeepsBeat(t *testing.T) {
	player, broker := startedPlayer(t, playerProject())
	buffer := make(dawduction.AudioBuffer, 4410)
	player.Process(buffer)
	beatBefore := player.beat(player.samplesPerBeat())

	broker.ToEngine <- SetTempo{BPM: 120}
	player.processMessages()
	got := player.beat(player.samplesPerBeat())
	if diff := got - beatBefore; diff > 1e-3 || diff < -1e-3 {
		t.Errorf("tempo change moved the beat from %v to %v", beatBefore, got)
	}
}

func TestRenderLengthAndTail(t *testing.T) {
	out, err := Render(nil, playerProject(), 8000, 1)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	// One loop at 60 BPM and 8 kHz is 8000 samples, plus the ring-out tail in
	// whole chunks.
	want := 8000 + (renderTailSeconds*8000/renderChunk)*renderChunk
	if len(out) != want {
		t.Errorf("rendered %d samples, want %d", len(out), want)
	}
	if !bufferHasSignal(out) {
		t.Errorf("rendered audio is silent")
	}
}

func TestRenderNotifiesBroker(t *testing.T) {
	broker := NewBroker()
	if _, err := Render(broker, playerProject(), 8000, 1); err != nil {
		t.Fatalf("Render: %v", err)
	}
	finished := false
	for _, n := range drainNotifications(broker) {
		if f, ok := n.(RenderFinished); ok {
			finished = true
			if f.Err != nil || len(f.Buffer) == 0 {
				t.Errorf("RenderFinished = %d samples, err %v", len(f.Buffer), f.Err)
			}
		}
	}
	if !finished {
		t.Errorf("no RenderFinished notification")
	}
}

func TestRenderRejectsBadProject(t *testing.T) {
	if _, err := Render(nil, nil, 8000, 1); err == nil {
		t.Errorf("Render accepted a nil project")
	}
	bad := playerProject()
	bad.BPM = 0
	if _, err := Render(nil, bad, 8000, 1); err == nil {
		t.Errorf("Render accepted BPM 0")
	}
}

func TestTrySendDropsWhenFull(t *testing.T) {
	c := make(chan int, 1)
	if !TrySend(c, 1) {
		t.Fatalf("send to an empty channel dropped")
	}
	if TrySend(c, 2) {
		t.Errorf("send to a full channel did not drop")
	}
	if got := <-c; got != 1 {
		t.Errorf("channel holds %d, want 1", got)
	}
}
