// Package cmd holds the helpers shared by the command line frontends, most
// importantly the cgo seam: MIDI input needs the rtmidi driver, which is only
// available when compiling with cgo.
package cmd

// MIDIInput is the part of the MIDI layer the frontends need.
type MIDIInput interface {
	// Open connects to the first input device matching the name prefix; an
	// empty prefix takes the first device.
	Open(namePrefix string) error
	// SetTrack routes incoming notes to the given track.
	SetTrack(trackID string)
	// InputNames lists the available input devices.
	InputNames() []string
	HasDeviceOpen() bool
	Close()
}
