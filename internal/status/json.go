package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/forcepad/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Left          ChannelJSON   `json:"left"`
	Right         ChannelJSON   `json:"right"`
	Ready         bool          `json:"ready"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	Keyboard      KeyboardJSON  `json:"keyboard"`
	Counts        CountsJSON    `json:"gesture_counts"`
	Recent        []GestureJSON `json:"recent"`
	Config        ConfigJSON    `json:"config"`
}

// ChannelJSON is the JSON representation of one force channel.
type ChannelJSON struct {
	Raw        int     `json:"raw"`
	Pressed    bool    `json:"pressed"`
	Baseline   float64 `json:"baseline"`
	Threshold  float64 `json:"threshold"`
	Samples    int     `json:"samples"`
	Phase      string  `json:"phase"`
	PressCount int     `json:"press_count"`
}

// KeyboardJSON reports the HID bridge link.
type KeyboardJSON struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
	Dropped   int    `json:"dropped"`
}

// CountsJSON is the JSON representation of gesture counts.
type CountsJSON struct {
	ShortPress            int `json:"short_press"`
	LongPress             int `json:"long_press"`
	DoublePress           int `json:"double_press"`
	SimultaneousLongPress int `json:"simultaneous_long_press"`
}

// GestureJSON is one entry of the recent gesture list.
type GestureJSON struct {
	Timestamp string `json:"timestamp"`
	Side      string `json:"side"`
	Kind      string `json:"kind"`
	Command   string `json:"command"`
	Sent      bool   `json:"sent"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs       int64  `json:"poll_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	SerialDevice string `json:"serial_device"`
	LEDLine      int    `json:"led_line"`
}

func buildInner(snap Snapshot) StatusInner {
	recent := make([]GestureJSON, 0, len(snap.Recent))
	for _, r := range snap.Recent {
		recent = append(recent, GestureJSON{
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339Nano),
			Side:      string(r.Side),
			Kind:      string(r.Kind),
			Command:   string(r.Command),
			Sent:      r.Sent,
		})
	}

	return StatusInner{
		Left:          channelJSON(snap.Left),
		Right:         channelJSON(snap.Right),
		Ready:         snap.Calibrated,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Keyboard: KeyboardJSON{
			Connected: snap.KeyboardConnected,
			Broker:    snap.Config.Broker,
			Dropped:   snap.Dropped,
		},
		Counts: CountsJSON{
			ShortPress:            snap.Counts.ShortPress,
			LongPress:             snap.Counts.LongPress,
			DoublePress:           snap.Counts.DoublePress,
			SimultaneousLongPress: snap.Counts.SimultaneousLongPress,
		},
		Recent: recent,
		Config: ConfigJSON{
			PollMs:       snap.Config.PollMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			SerialDevice: snap.Config.SerialDevice,
			LEDLine:      snap.Config.LEDLine,
		},
	}
}

func channelJSON(v logic.ChannelView) ChannelJSON {
	phase := string(v.Phase)
	if phase == "" {
		phase = "UNKNOWN"
	}
	return ChannelJSON{
		Raw:        v.Raw,
		Pressed:    v.Pressed,
		Baseline:   v.Baseline,
		Threshold:  v.Threshold,
		Samples:    v.Samples,
		Phase:      phase,
		PressCount: v.PressCount,
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for an MQTT system event
// or a websocket push.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
