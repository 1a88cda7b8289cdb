//go:build !cgo

package cmd

import (
	"errors"

	"github.com/Niftys/dawduction/engine"
)

func NewMIDIContext(broker *engine.Broker) MIDIInput {
	// with no cgo, we cannot use MIDI, so return a null context
	return nullMIDI{}
}

type nullMIDI struct{}

func (nullMIDI) Open(string) error    { return errors.New("MIDI support not compiled in") }
func (nullMIDI) SetTrack(string)      {}
func (nullMIDI) InputNames() []string { return nil }
func (nullMIDI) HasDeviceOpen() bool  { return false }
func (nullMIDI) Close()               {}
