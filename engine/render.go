package engine

import (
	"fmt"

	"github.com/Niftys/dawduction"
)

// renderChunk is the buffer size offline rendering advances by. Small
// enough to keep event timing identical to real-time playback.
const renderChunk = 512

// renderTailSeconds is rendered past the last loop so releases and delay
// tails ring out instead of being cut at the loop edge.
const renderTailSeconds = 2

// Render renders the project's active loop offline, loops times plus a
// ring-out tail, and returns the audio. When broker is non-nil the result
// is also announced with a RenderFinished notification, so a host can fire
// and forget.
func Render(broker *Broker, project *dawduction.Project, sampleRate, loops int) (dawduction.AudioBuffer, error) {
	buffer, err := render(project, sampleRate, loops)
	if broker != nil {
		TrySend(broker.ToHost, Notification(RenderFinished{Buffer: buffer, Err: err}))
	}
	return buffer, err
}

func render(project *dawduction.Project, sampleRate, loops int) (dawduction.AudioBuffer, error) {
	if project == nil {
		return nil, fmt.Errorf("render: no project")
	}
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if loops < 1 {
		loops = 1
	}
	// The player gets a private broker: the offline render must not drain
	// or pollute a live engine's message queues.
	player := NewPlayer(NewBroker(), sampleRate)
	own := project.Copy()
	player.apply(LoadProject{Project: &own})
	player.apply(SetTransport{State: TransportPlay, Seek: true})

	spb := player.samplesPerBeat()
	total := int(own.LoopLength()*spb) * loops
	out := make(dawduction.AudioBuffer, 0, total+renderTailSeconds*sampleRate)
	chunk := make(dawduction.AudioBuffer, renderChunk)
	for len(out) < total {
		n := total - len(out)
		if n > renderChunk {
			n = renderChunk
		}
		player.Process(chunk[:n])
		out = append(out, chunk[:n]...)
	}
	// Ring out: pause stops scheduling but keeps voices and effect tails
	// sounding.
	player.apply(SetTransport{State: TransportPause})
	for i := 0; i < renderTailSeconds*sampleRate/renderChunk; i++ {
		player.Process(chunk)
		out = append(out, chunk...)
	}
	return out, nil
}
