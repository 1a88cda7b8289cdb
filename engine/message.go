package engine

import (
	"time"

	"github.com/Niftys/dawduction"
)

// The control surface of the engine is a closed set of tagged messages. The
// host sends Msg values through the broker; the engine replies with
// Notification values. Both sets are sealed so an unhandled message is a
// compile-time omission, not a silent fall-through.

type (
	// Msg is a control message from the host to the engine. Messages are
	// applied between render callbacks; they never block the render thread.
	Msg interface {
		isMsg()
	}

	// LoadProject replaces the whole project. The engine takes ownership of
	// the value; the host must not mutate it afterwards.
	LoadProject struct {
		Project *dawduction.Project
	}

	// TransportState selects what the transport clock does.
	TransportState int

	// SetTransport starts, stops or pauses playback. Position is applied
	// only when Seek is set, so the zero value resumes in place instead of
	// silently rewinding a paused transport.
	SetTransport struct {
		State    TransportState
		Seek     bool
		Position float64 // beats; ignored unless Seek is set
	}

	// SetTempo changes the tempo without interrupting playback.
	SetTempo struct {
		BPM float64
	}

	// SetViewMode switches between pattern looping and timeline playback.
	SetViewMode struct {
		Mode dawduction.ViewMode
	}

	// UpdatePatternTree replaces one track's rhythm tree. The edit takes
	// effect at the next loop wrap, which is the glitch-free seam.
	UpdatePatternTree struct {
		TrackID string
		Tree    *dawduction.PatternNode
	}

	// UpdateTrackSettings merges per-voice settings into a track without
	// retriggering its voice.
	UpdateTrackSettings struct {
		TrackID  string
		Settings map[string]float64
	}

	// UpdateTrack inserts or replaces a whole track.
	UpdateTrack struct {
		Track dawduction.Track
	}

	// RemoveTrack removes a track and its voice.
	RemoveTrack struct {
		TrackID string
	}

	UpdateTrackVolume struct {
		TrackID string
		Volume  float64
	}

	UpdateTrackPan struct {
		TrackID string
		Pan     float64
	}

	UpdateTrackMute struct {
		TrackID string
		Muted   bool
	}

	UpdateTrackSolo struct {
		TrackID string
		Soloed  bool
	}

	UpdateTimelineTrackVolume struct {
		TimelineTrackID string
		Volume          float64
	}

	UpdateTimelineTrackMute struct {
		TimelineTrackID string
		Muted           bool
	}

	UpdateTimelineTrackSolo struct {
		TimelineTrackID string
		Soloed          bool
	}

	// UpdateEffect merges settings into an effect definition.
	UpdateEffect struct {
		EffectID string
		Settings map[string]float64
	}

	// UpdateEnvelope replaces an envelope definition's parameters.
	UpdateEnvelope struct {
		EnvelopeID string
		Start      float64
		End        float64
		Shape      dawduction.CurveShape
	}

	// SetMasterGain scales the summed output.
	SetMasterGain struct {
		Gain float64
	}

	// NoteOn triggers a track's voice directly, for live MIDI input.
	NoteOn struct {
		TrackID  string
		Pitch    int
		Velocity float64
	}

	// NoteOff releases a live note.
	NoteOff struct {
		TrackID string
		Pitch   int
	}
)

const (
	TransportStop TransportState = iota
	TransportPlay
	TransportPause
)

func (LoadProject) isMsg()               {}
func (SetTransport) isMsg()              {}
func (SetTempo) isMsg()                  {}
func (SetViewMode) isMsg()               {}
func (UpdatePatternTree) isMsg()         {}
func (UpdateTrackSettings) isMsg()       {}
func (UpdateTrack) isMsg()               {}
func (RemoveTrack) isMsg()               {}
func (UpdateTrackVolume) isMsg()         {}
func (UpdateTrackPan) isMsg()            {}
func (UpdateTrackMute) isMsg()           {}
func (UpdateTrackSolo) isMsg()           {}
func (UpdateTimelineTrackVolume) isMsg() {}
func (UpdateTimelineTrackMute) isMsg()   {}
func (UpdateTimelineTrackSolo) isMsg()   {}
func (UpdateEffect) isMsg()              {}
func (UpdateEnvelope) isMsg()            {}
func (SetMasterGain) isMsg()             {}
func (NoteOn) isMsg()                    {}
func (NoteOff) isMsg()                   {}

type (
	// Notification is a message from the engine back to the host. All sends
	// are non-blocking; a slow host loses notifications, never audio.
	Notification interface {
		isNotification()
	}

	// Ready is sent once the engine has accepted a project and can play.
	Ready struct{}

	// PlaybackPosition is the periodic transport position report, throttled
	// to roughly one per 50 ms of audio.
	PlaybackPosition struct {
		Beat    float64
		Playing bool
	}

	// PlaybackUpdate is sent when events fire, carrying the pattern node IDs
	// for visual feedback.
	PlaybackUpdate struct {
		Beat          float64
		FiredEventIDs []string
	}

	// CPULoad reports the fraction of the wall-clock budget the last
	// callbacks consumed.
	CPULoad struct {
		Load float64
	}

	// PeakLevels carries the master bus peak per channel since the last
	// position report.
	PeakLevels struct {
		Left  float32
		Right float32
	}

	// RenderFinished reports the result of an offline render.
	RenderFinished struct {
		Buffer dawduction.AudioBuffer
		Err    error
	}

	// RenderedAudio carries a copy of the latest callback's frames for
	// host-side scopes and meters. The buffer is borrowed from the broker
	// pool; the receiver must hand it back with PutAudioBuffer once read.
	RenderedAudio struct {
		Buffer *dawduction.AudioBuffer
	}

	// AlertPriority orders alerts so the host can drop the boring ones.
	AlertPriority int

	// Alert is a non-fatal engine fault, reported instead of logged because
	// the render thread cannot write to a logger.
	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
		Duration time.Duration
	}
)

const (
	Notify AlertPriority = iota
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

func (Ready) isNotification()            {}
func (PlaybackPosition) isNotification() {}
func (PlaybackUpdate) isNotification()   {}
func (CPULoad) isNotification()          {}
func (PeakLevels) isNotification()       {}
func (RenderFinished) isNotification()   {}
func (RenderedAudio) isNotification()    {}
func (Alert) isNotification()            {}
