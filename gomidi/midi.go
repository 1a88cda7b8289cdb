// Package gomidi feeds live MIDI note input into the engine. Note on and off
// messages of an opened input device become NoteOn/NoteOff control messages
// targeting one track, so a hardware keyboard can play any instrument while
// the transport runs.
package gomidi

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Niftys/dawduction/engine"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

type Context struct {
	driver    *rtmididrv.Driver
	broker    *engine.Broker
	currentIn drivers.In
	stopFn    func()

	mu      sync.Mutex
	trackID string
}

// NewContext opens the MIDI driver. A machine without one still gets a usable
// context; it just never lists any inputs.
func NewContext(broker *engine.Broker) *Context {
	c := &Context{broker: broker}
	// there's not much we can do if this fails, so just use c.driver = nil to
	// indicate no driver available
	c.driver, _ = rtmididrv.New()
	return c
}

// InputNames lists the available MIDI input devices.
func (c *Context) InputNames() []string {
	if c.driver == nil {
		return nil
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return nil
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names
}

// SetTrack selects which track live notes are routed to.
func (c *Context) SetTrack(trackID string) {
	c.mu.Lock()
	c.trackID = trackID
	c.mu.Unlock()
}

// Open connects to the first input device whose name starts with namePrefix,
// or to the first device when the prefix is empty, closing any previously
// open device first.
func (c *Context) Open(namePrefix string) error {
	if c.driver == nil {
		return errors.New("no MIDI driver available")
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if namePrefix != "" && !strings.HasPrefix(in.String(), namePrefix) {
			continue
		}
		return c.open(in)
	}
	if namePrefix == "" {
		return errors.New("no MIDI inputs available")
	}
	return fmt.Errorf("no MIDI input starting with %q", namePrefix)
}

func (c *Context) open(in drivers.In) error {
	c.closeInput()
	if err := in.Open(); err != nil {
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(in, c.handleMessage)
	if err != nil {
		in.Close()
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	c.currentIn = in
	c.stopFn = stop
	return nil
}

// HasDeviceOpen reports whether an input device is currently connected.
func (c *Context) HasDeviceOpen() bool {
	return c.currentIn != nil && c.currentIn.IsOpen()
}

// handleMessage runs on the driver's listener goroutine; everything it
// touches is either immutable, mutex-guarded or a channel send.
func (c *Context) handleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		// A note on with zero velocity is a note off by MIDI convention.
		if velocity == 0 {
			c.sendNoteOff(int(key))
			return
		}
		c.sendNoteOn(int(key), float64(velocity)/127)
	case msg.GetNoteOff(&channel, &key, &velocity):
		c.sendNoteOff(int(key))
	}
}

func (c *Context) sendNoteOn(pitch int, velocity float64) {
	if id := c.targetTrack(); id != "" {
		engine.TrySend(c.broker.ToEngine, engine.Msg(engine.NoteOn{TrackID: id, Pitch: pitch, Velocity: velocity}))
	}
}

func (c *Context) sendNoteOff(pitch int) {
	if id := c.targetTrack(); id != "" {
		engine.TrySend(c.broker.ToEngine, engine.Msg(engine.NoteOff{TrackID: id, Pitch: pitch}))
	}
}

func (c *Context) targetTrack() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trackID
}

func (c *Context) closeInput() {
	if c.stopFn != nil {
		c.stopFn()
		c.stopFn = nil
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = nil
}

// Close disconnects the input device and shuts the driver down.
func (c *Context) Close() {
	if c.driver == nil {
		return
	}
	c.closeInput()
	c.driver.Close()
}
