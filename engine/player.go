package engine

import (
	"fmt"
	"time"

	"github.com/Niftys/dawduction"
)

// positionReportSeconds throttles the periodic transport position
// notification.
const positionReportSeconds = 0.05

type (
	// Player is the render loop, driven by the audio callback on a dedicated
	// real-time thread. Every callback it drains control messages, schedules
	// the lookahead window, fires due events into the voices, mixes, and
	// advances the transport clock. It never blocks: all sends to the host
	// are best-effort and all mutations arrive as messages between
	// callbacks.
	Player struct {
		broker     *Broker
		sampleRate int

		project   *dawduction.Project
		events    []dawduction.NoteEvent
		scheduler *Scheduler
		effects   *EffectsProcessor
		envelopes *EnvelopesProcessor
		bank      *VoiceBank
		mixer     *Mixer

		state  TransportState
		clock  int64 // samples since the start of the current loop
		closed bool

		reportAccum int64
		cpuLoad     float64
	}
)

func NewPlayer(broker *Broker, sampleRate int) *Player {
	effects := NewEffectsProcessor(broker, sampleRate)
	envelopes := NewEnvelopesProcessor(broker)
	bank := NewVoiceBank(broker, sampleRate)
	return &Player{
		broker:     broker,
		sampleRate: sampleRate,
		scheduler:  NewScheduler(sampleRate),
		effects:    effects,
		envelopes:  envelopes,
		bank:       bank,
		mixer:      NewMixer(broker, sampleRate, effects, envelopes, bank),
	}
}

// ReadAudio implements dawduction.AudioSource: the player is an endless
// source that renders whatever the transport state says.
func (p *Player) ReadAudio(buffer dawduction.AudioBuffer) (int, error) {
	p.Process(buffer)
	return len(buffer), nil
}

// Process renders one callback's worth of audio into the buffer.
func (p *Player) Process(buffer dawduction.AudioBuffer) {
	defer func() {
		if err := recover(); err != nil {
			clear(buffer)
			TrySend(p.broker.ToHost, Notification(Alert{
				Name:     "PlayerCrash",
				Message:  fmt.Sprintf("render panicced: %v", err),
				Priority: Error,
				Duration: defaultAlertDuration,
			}))
		}
	}()
	start := time.Now()
	select {
	case <-p.broker.CloseEngine:
		p.closed = true
		close(p.broker.FinishedEngine)
	default:
	}
	if p.closed {
		clear(buffer)
		return
	}
	p.processMessages()
	if p.project == nil {
		clear(buffer)
		return
	}
	spb := p.samplesPerBeat()
	loopLength := p.project.LoopLength()
	loopSamples := int64(loopLength * spb)
	if loopSamples <= 0 {
		clear(buffer)
		return
	}

	if p.state != TransportPlay {
		// Stopped or paused: no scheduling, no clock movement, but active
		// voices and effect tails keep ringing out.
		p.mixer.Mix(p.project, buffer, p.beat(spb), spb)
		p.shareRendered(buffer)
		p.noteTime(start, len(buffer))
		return
	}

	rem := buffer
	for len(rem) > 0 {
		p.scheduler.Schedule(p.events, p.clock, spb, loopLength, p.project.ViewMode)
		p.fireDueEvents(spb)

		sliceEnd := p.clock + int64(len(rem))
		if loopSamples < sliceEnd {
			sliceEnd = loopSamples
		}
		if at, ok := p.scheduler.NextFiring(p.clock + 1); ok && at < sliceEnd {
			sliceEnd = at
		}
		n := int(sliceEnd - p.clock)
		if n <= 0 {
			// The loop shrank under the clock through a live edit; wrap
			// immediately instead of spinning.
			p.clock = loopSamples
			p.wrap(loopSamples)
			continue
		}
		p.mixer.Mix(p.project, rem[:n], p.beat(spb), spb)
		rem = rem[n:]
		p.clock += int64(n)
		p.reportAccum += int64(n)

		if p.clock >= loopSamples {
			p.wrap(loopSamples)
		}
	}
	p.shareRendered(buffer)
	p.noteTime(start, len(buffer))
	p.maybeReportPosition(spb)
}

// shareRendered hands a copy of the rendered frames to the host through the
// broker's buffer pool. The send never blocks; when the host is not
// consuming, the copy goes straight back to the pool.
func (p *Player) shareRendered(buffer dawduction.AudioBuffer) {
	buf := p.broker.GetAudioBuffer()
	*buf = append(*buf, buffer...)
	if !TrySend(p.broker.ToHost, Notification(RenderedAudio{Buffer: buf})) {
		p.broker.PutAudioBuffer(buf)
	}
}

// wrap resets the transport into the next loop iteration and rebuilds the
// schedule from the current project data. This is where live pattern edits
// become audible, without touching the loop in flight.
func (p *Player) wrap(loopSamples int64) {
	p.clock -= loopSamples
	p.scheduler.Clear()
	p.events = p.project.ActiveEvents()
}

// fireDueEvents triggers every event scheduled at the current clock sample
// and tells the host which pattern nodes fired.
func (p *Player) fireDueEvents(spb float64) {
	buckets := p.scheduler.Drain(p.clock, p.clock+1)
	for _, bucket := range buckets {
		ids := make([]string, 0, len(bucket.Events))
		for _, ev := range bucket.Events {
			if ev.NodeID != "" {
				ids = append(ids, ev.NodeID)
			}
			track := p.project.TrackByID(ev.InstrumentID)
			if track == nil {
				continue
			}
			voice := p.bank.Voice(track)
			if voice == nil {
				continue
			}
			voice.Trigger(ev.Velocity, ev.Pitch, ev.Duration)
		}
		TrySend(p.broker.ToHost, Notification(PlaybackUpdate{Beat: p.beat(spb), FiredEventIDs: ids}))
	}
}

func (p *Player) processMessages() {
loop:
	for {
		select {
		case msg := <-p.broker.ToEngine:
			p.apply(msg)
		default:
			break loop
		}
	}
}

func (p *Player) apply(msg Msg) {
	switch m := msg.(type) {
	case LoadProject:
		p.project = m.Project
		p.events = p.project.ActiveEvents()
		p.scheduler.Clear()
		p.effects.SetProject(p.project)
		p.envelopes.SetProject(p.project)
		p.bank.Clear()
		p.bank.SetTempo(p.project.BPM)
		p.mixer.SetProject(p.project)
		p.clock = 0
		TrySend(p.broker.ToHost, Notification(Ready{}))
	case SetTransport:
		p.applyTransport(m)
	case SetTempo:
		p.applyTempo(m.BPM)
	case SetViewMode:
		if p.project != nil && p.project.ViewMode != m.Mode {
			p.project.ViewMode = m.Mode
			p.restartLoop()
		}
	case UpdatePatternTree:
		if t := p.trackByID(m.TrackID); t != nil {
			t.Pattern = m.Tree
			p.refreshEvents()
		}
	case UpdateTrackSettings:
		if t := p.trackByID(m.TrackID); t != nil {
			if t.Settings == nil {
				t.Settings = make(map[string]float64, len(m.Settings))
			}
			for k, v := range m.Settings {
				t.Settings[k] = v
			}
			p.bank.UpdateSettings(m.TrackID, m.Settings)
		}
	case UpdateTrack:
		p.upsertTrack(m.Track)
	case RemoveTrack:
		p.removeTrack(m.TrackID)
	case UpdateTrackVolume:
		if t := p.trackByID(m.TrackID); t != nil {
			t.Volume = m.Volume
		}
	case UpdateTrackPan:
		if t := p.trackByID(m.TrackID); t != nil {
			t.Pan = clampPan(m.Pan)
		}
	case UpdateTrackMute:
		if t := p.trackByID(m.TrackID); t != nil {
			t.Muted = m.Muted
		}
	case UpdateTrackSolo:
		if t := p.trackByID(m.TrackID); t != nil {
			t.Soloed = m.Soloed
		}
	case UpdateTimelineTrackVolume:
		if tt := p.timelineTrackByID(m.TimelineTrackID); tt != nil {
			tt.Volume = m.Volume
		}
	case UpdateTimelineTrackMute:
		if tt := p.timelineTrackByID(m.TimelineTrackID); tt != nil {
			tt.Muted = m.Muted
		}
	case UpdateTimelineTrackSolo:
		if tt := p.timelineTrackByID(m.TimelineTrackID); tt != nil {
			tt.Soloed = m.Soloed
		}
	case UpdateEffect:
		if p.project == nil {
			return
		}
		if def := p.project.EffectByID(m.EffectID); def != nil {
			if def.Settings == nil {
				def.Settings = make(map[string]float64, len(m.Settings))
			}
			for k, v := range m.Settings {
				def.Settings[k] = v
			}
		}
	case UpdateEnvelope:
		if p.project == nil {
			return
		}
		if def := p.project.EnvelopeByID(m.EnvelopeID); def != nil {
			def.Start = m.Start
			def.End = m.End
			def.Shape = m.Shape
		}
	case SetMasterGain:
		p.mixer.SetMasterGain(m.Gain)
	case NoteOn:
		if t := p.trackByID(m.TrackID); t != nil {
			if voice := p.bank.Voice(t); voice != nil {
				voice.Trigger(m.Velocity, m.Pitch, 0)
			}
		}
	case NoteOff:
		if t := p.trackByID(m.TrackID); t != nil {
			if voice := p.bank.Voice(t); voice != nil {
				voice.Release()
			}
		}
	}
}

func (p *Player) applyTransport(m SetTransport) {
	if p.project == nil {
		return
	}
	if m.Seek {
		pos := m.Position
		if pos < 0 {
			pos = 0
		}
		spb := p.samplesPerBeat()
		beat := wrapBeat(pos, p.project.LoopLength())
		p.clock = int64(beat * spb)
		p.scheduler.Clear()
	}
	switch m.State {
	case TransportPlay:
		if p.state != TransportPlay {
			p.state = TransportPlay
			p.refreshEvents()
		}
	case TransportPause:
		// Pause keeps the position; sounding notes ring out.
		p.state = TransportPause
		p.bank.ReleaseAll()
	case TransportStop:
		// Stop is immediate and rewinds to zero.
		p.state = TransportStop
		p.clock = 0
		p.scheduler.Clear()
		p.bank.ReleaseAll()
	}
}

func (p *Player) applyTempo(bpm float64) {
	if p.project == nil || bpm <= 0 {
		return
	}
	// Keep the musical position fixed through the tempo change.
	oldSpb := p.samplesPerBeat()
	beat := float64(p.clock) / oldSpb
	p.project.BPM = bpm
	p.clock = int64(beat * p.samplesPerBeat())
	p.scheduler.Clear()
	p.bank.SetTempo(bpm)
}

// restartLoop resets the transport into the (possibly different-length) loop
// of the current mode.
func (p *Player) restartLoop() {
	p.clock = 0
	p.scheduler.Clear()
	p.refreshEvents()
}

// refreshEvents recomputes the flattened event set. Already-scheduled
// entries are untouched; removed events play out until the wrap clears them.
func (p *Player) refreshEvents() {
	if p.project != nil {
		p.events = p.project.ActiveEvents()
	}
}

func (p *Player) upsertTrack(track dawduction.Track) {
	if p.project == nil {
		return
	}
	if t := p.trackByID(track.ID); t != nil {
		*t = track
	} else {
		p.project.Tracks = append(p.project.Tracks, track)
	}
	p.bank.Remove(track.ID) // recreated with the new kind and settings
	p.refreshEvents()
}

func (p *Player) removeTrack(trackID string) {
	if p.project == nil {
		return
	}
	if i := p.project.TrackIndex(trackID); i >= 0 {
		p.project.Tracks = append(p.project.Tracks[:i], p.project.Tracks[i+1:]...)
	}
	p.bank.Remove(trackID)
	p.refreshEvents()
}

func (p *Player) trackByID(id string) *dawduction.Track {
	if p.project == nil {
		return nil
	}
	return p.project.TrackByID(id)
}

func (p *Player) timelineTrackByID(id string) *dawduction.TimelineTrack {
	if p.project == nil {
		return nil
	}
	return p.project.Timeline.TrackByID(id)
}

func (p *Player) samplesPerBeat() float64 {
	bpm := p.project.BPM
	if bpm <= 0 {
		bpm = 120
	}
	return float64(p.sampleRate) * 60 / bpm
}

func (p *Player) beat(spb float64) float64 {
	return float64(p.clock) / spb
}

// noteTime folds one callback's wall-clock cost into the smoothed CPU load
// estimate, as a fraction of the real-time budget.
func (p *Player) noteTime(start time.Time, frames int) {
	if frames == 0 {
		return
	}
	budget := float64(frames) / float64(p.sampleRate)
	load := time.Since(start).Seconds() / budget
	p.cpuLoad = p.cpuLoad*0.9 + load*0.1
}

func (p *Player) maybeReportPosition(spb float64) {
	if p.reportAccum < int64(positionReportSeconds*float64(p.sampleRate)) {
		return
	}
	p.reportAccum = 0
	TrySend(p.broker.ToHost, Notification(PlaybackPosition{Beat: p.beat(spb), Playing: p.state == TransportPlay}))
	left, right := p.mixer.TakePeaks()
	TrySend(p.broker.ToHost, Notification(PeakLevels{Left: left, Right: right}))
	TrySend(p.broker.ToHost, Notification(CPULoad{Load: p.cpuLoad}))
}
