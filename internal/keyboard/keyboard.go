// Package keyboard sends key commands to the wireless HID bridge, with
// abstraction for testing.
package keyboard

import (
	"encoding/json"
	"time"

	"github.com/sweeney/forcepad/internal/logic"
)

// Topic is the MQTT topic the HID bridge subscribes to for key actions.
const Topic = "forcepad/keys"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "forcepad/system"

// Action is what the bridge should do with a key.
type Action string

const (
	ActionTap     Action = "TAP"
	ActionPress   Action = "PRESS"
	ActionRelease Action = "RELEASE"
)

// Keyboard is the output side of the device.
type Keyboard interface {
	// IsConnected reports whether the bridge link is up.
	IsConnected() bool

	// Write taps a key (press and immediate release).
	Write(cmd logic.Command) error

	// Press holds a key down until Release.
	Press(cmd logic.Command) error

	// Release lets go of a held key.
	Release(cmd logic.Command) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the bridge.
	Close() error
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message payload for a key action.
type Payload struct {
	Key KeyPayload `json:"key"`
}

// KeyPayload contains the key action details.
type KeyPayload struct {
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
	Action    string `json:"action"`
}

// FormatPayload creates the JSON payload for a key action.
func FormatPayload(cmd logic.Command, action Action, ts time.Time) ([]byte, error) {
	return json.Marshal(Payload{
		Key: KeyPayload{
			Timestamp: ts.UTC().Format(time.RFC3339Nano),
			Command:   string(cmd),
			Action:    string(action),
		},
	})
}

// SystemPayload represents the MQTT message payload for system events that
// don't carry a full status snapshot (e.g. the OFFLINE last will).
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
