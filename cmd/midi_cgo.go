//go:build cgo

package cmd

import (
	"github.com/Niftys/dawduction/engine"
	"github.com/Niftys/dawduction/gomidi"
)

func NewMIDIContext(broker *engine.Broker) MIDIInput {
	return gomidi.NewContext(broker)
}
