package engine

import (
	"fmt"

	"github.com/Niftys/dawduction"
	"github.com/Niftys/dawduction/synth"
)

type (
	// VoiceBank owns the runtime voice of every instrument track. Voices are
	// created lazily on first use and recreated when a track's kind changes;
	// they are never shared between tracks, so no locking is needed.
	VoiceBank struct {
		broker     *Broker
		sampleRate int
		bpm        float64
		voices     map[string]*bankEntry
		warned     map[string]struct{}
	}

	bankEntry struct {
		kind  dawduction.InstrumentKind
		voice dawduction.Voice
	}
)

func NewVoiceBank(broker *Broker, sampleRate int) *VoiceBank {
	return &VoiceBank{
		broker:     broker,
		sampleRate: sampleRate,
		bpm:        120,
		voices:     make(map[string]*bankEntry),
		warned:     make(map[string]struct{}),
	}
}

// Voice returns the runtime voice of a track, creating or recreating it as
// needed. A track with an unknown kind yields nil; the mixer skips nil
// voices and the fault is reported once.
func (b *VoiceBank) Voice(track *dawduction.Track) dawduction.Voice {
	entry, ok := b.voices[track.ID]
	if ok && entry.kind == track.Kind {
		return entry.voice
	}
	v := synth.New(track.Kind, b.sampleRate)
	if v == nil {
		b.warnOnce(track.ID, fmt.Sprintf("track %s has unknown instrument kind %d; track is silent", track.ID, int(track.Kind)))
		b.voices[track.ID] = &bankEntry{kind: track.Kind}
		return nil
	}
	v.SetTempo(b.bpm)
	if len(track.Settings) > 0 {
		v.UpdateSettings(track.Settings)
	}
	b.voices[track.ID] = &bankEntry{kind: track.Kind, voice: v}
	return v
}

// UpdateSettings merges settings into a track's live voice, if it exists.
// The next Voice call picks them up otherwise, via track.Settings.
func (b *VoiceBank) UpdateSettings(trackID string, settings map[string]float64) {
	if entry, ok := b.voices[trackID]; ok && entry.voice != nil {
		entry.voice.UpdateSettings(settings)
	}
}

// SetTempo propagates a tempo change to every live voice.
func (b *VoiceBank) SetTempo(bpm float64) {
	if bpm <= 0 {
		return
	}
	b.bpm = bpm
	for _, entry := range b.voices {
		if entry.voice != nil {
			entry.voice.SetTempo(bpm)
		}
	}
}

// ReleaseAll sends every live voice into its release stage, so transport
// stops fade out instead of clicking.
func (b *VoiceBank) ReleaseAll() {
	for _, entry := range b.voices {
		if entry.voice != nil {
			entry.voice.Release()
		}
	}
}

// Remove drops a track's voice.
func (b *VoiceBank) Remove(trackID string) {
	delete(b.voices, trackID)
}

// Clear drops every voice and warning throttle, for project reloads.
func (b *VoiceBank) Clear() {
	b.voices = make(map[string]*bankEntry)
	b.warned = make(map[string]struct{})
}

func (b *VoiceBank) warnOnce(id, message string) {
	if _, ok := b.warned[id]; ok {
		return
	}
	b.warned[id] = struct{}{}
	TrySend(b.broker.ToHost, Notification(Alert{
		Name:     "UnknownInstrument",
		Message:  message,
		Priority: Warning,
		Duration: defaultAlertDuration,
	}))
}
