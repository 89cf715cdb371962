package keyboard

import (
	"errors"

	"github.com/sweeney/forcepad/internal/logic"
)

// ErrNotConnected is returned by FakeKeyboard key methods while disconnected.
var ErrNotConnected = errors.New("keyboard not connected")

// KeyAction is a recorded key action.
type KeyAction struct {
	Command logic.Command
	Action  Action
}

// FakeKeyboard records key actions and system events for test assertions.
type FakeKeyboard struct {
	// Actions contains every key action that was accepted.
	Actions []KeyAction

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// WriteError, if set, will be returned by Write, Press and Release.
	WriteError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeKeyboard creates a connected FakeKeyboard for testing.
func NewFakeKeyboard() *FakeKeyboard {
	return &FakeKeyboard{Connected: true}
}

// IsConnected reports whether the fake keyboard is "connected".
func (f *FakeKeyboard) IsConnected() bool {
	return f.Connected
}

// Write records a tap.
func (f *FakeKeyboard) Write(cmd logic.Command) error {
	return f.record(cmd, ActionTap)
}

// Press records a key press.
func (f *FakeKeyboard) Press(cmd logic.Command) error {
	return f.record(cmd, ActionPress)
}

// Release records a key release.
func (f *FakeKeyboard) Release(cmd logic.Command) error {
	return f.record(cmd, ActionRelease)
}

func (f *FakeKeyboard) record(cmd logic.Command, action Action) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	if !f.Connected {
		return ErrNotConnected
	}
	f.Actions = append(f.Actions, KeyAction{Command: cmd, Action: action})
	return nil
}

// PublishSystem records the system event.
func (f *FakeKeyboard) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the keyboard as closed.
func (f *FakeKeyboard) Close() error {
	f.Closed = true
	return nil
}

// Commands returns just the commands of the recorded actions, in order.
func (f *FakeKeyboard) Commands() []logic.Command {
	var out []logic.Command
	for _, a := range f.Actions {
		out = append(out, a.Command)
	}
	return out
}

// Reset clears recorded actions and events. The connection state is kept.
func (f *FakeKeyboard) Reset() {
	f.Actions = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.WriteError = nil
	f.PublishSystemError = nil
}
