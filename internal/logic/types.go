// Package logic contains pure gesture-recognition logic for the two force channels.
// This package has NO external dependencies (no serial, MQTT, GPIO, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Side identifies which channel (or channels) a gesture came from.
type Side string

const (
	Left  Side = "LEFT"
	Right Side = "RIGHT"
	Both  Side = "BOTH"
)

// GestureKind is a classified gesture.
type GestureKind string

const (
	ShortPress            GestureKind = "SHORT_PRESS"
	LongPress             GestureKind = "LONG_PRESS"
	DoublePress           GestureKind = "DOUBLE_PRESS"
	SimultaneousLongPress GestureKind = "SIMULTANEOUS_LONG_PRESS"
)

// GestureEvent is a gesture to be dispatched.
type GestureEvent struct {
	Timestamp time.Time
	Side      Side
	Kind      GestureKind
}

// Command is an output key understood by the keyboard bridge.
type Command string

const (
	PlayPause            Command = "PLAY_PAUSE"
	VolumeUp             Command = "VOLUME_UP"
	VolumeDown           Command = "VOLUME_DOWN"
	NextTrack            Command = "NEXT_TRACK"
	PreviousTrack        Command = "PREVIOUS_TRACK"
	AssistantModifierKey Command = "ASSISTANT_MODIFIER"
)

// Phase is the classifier state of a single channel.
type Phase string

const (
	// Idle: released, no double-press window open.
	Idle Phase = "IDLE"
	// Pressed: held, long press not yet fired.
	Pressed Phase = "PRESSED"
	// LongPressed: held, and this press has already been consumed.
	LongPressed Phase = "LONG_PRESSED"
	// AwaitingSecondPress: released with a double-press window open.
	AwaitingSecondPress Phase = "AWAITING_SECOND_PRESS"
)

// Input is a single raw sample of both channels.
type Input struct {
	Left  int
	Right int
	Time  time.Time
}

// Config holds the fixed timing and calibration constants.
type Config struct {
	LongPressDuration  time.Duration
	DoublePressWindow  time.Duration
	ReleaseQuietPeriod time.Duration
	CalibrationFactor  float64
	ThresholdFloor     float64
	CalibrationWarmup  time.Duration
	// GuardDelay is the debounce deadline armed after a gesture fires.
	GuardDelay time.Duration
}

// Default constants.
const (
	LongPressDuration  = 2000 * time.Millisecond
	DoublePressWindow  = 500 * time.Millisecond
	ReleaseQuietPeriod = 500 * time.Millisecond
	CalibrationFactor  = 1.2
	ThresholdFloor     = 300
	CalibrationWarmup  = 10000 * time.Millisecond
	GuardDelay         = 250 * time.Millisecond
	AssistantHold      = 2000 * time.Millisecond
)

// DefaultConfig returns the device constants.
func DefaultConfig() Config {
	return Config{
		LongPressDuration:  LongPressDuration,
		DoublePressWindow:  DoublePressWindow,
		ReleaseQuietPeriod: ReleaseQuietPeriod,
		CalibrationFactor:  CalibrationFactor,
		ThresholdFloor:     ThresholdFloor,
		CalibrationWarmup:  CalibrationWarmup,
		GuardDelay:         GuardDelay,
	}
}

// GestureCounts tracks the number of each gesture since startup.
type GestureCounts struct {
	ShortPress            int
	LongPress             int
	DoublePress           int
	SimultaneousLongPress int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    GestureCounts
}

// ChannelView is a read-only copy of a channel's state for status consumers.
type ChannelView struct {
	Raw        int
	Pressed    bool
	Baseline   float64
	Threshold  float64
	Samples    int
	Phase      Phase
	PressCount int
}
