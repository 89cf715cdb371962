// Package status provides a thread-safe status tracker for the forcepad daemon.
// It is written by the control loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/forcepad/internal/logic"
)

// DefaultHistory is how many recent gestures are kept.
const DefaultHistory = 16

// Config contains daemon configuration for display.
type Config struct {
	PollMs       int64
	HeartbeatMs  int64
	Broker       string
	HTTPAddr     string
	SerialDevice string
	LEDLine      int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Left              logic.ChannelView
	Right             logic.ChannelView
	Calibrated        bool
	Counts            logic.GestureCounts
	Recent            []GestureRecord
	Dropped           int
	KeyboardConnected bool
	StartTime         time.Time
	Now               time.Time
	Config            Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	history *history
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		history: newHistory(DefaultHistory),
	}
}

// Update sets channel views, calibration status, and gesture counts.
// Called from the control loop on every tick.
func (t *Tracker) Update(left, right logic.ChannelView, calibrated bool, counts logic.GestureCounts) {
	t.mu.Lock()
	t.snap.Left = left
	t.snap.Right = right
	t.snap.Calibrated = calibrated
	t.snap.Counts = counts
	t.mu.Unlock()
}

// Record appends a gesture to the recent history.
func (t *Tracker) Record(rec GestureRecord) {
	t.mu.Lock()
	t.history.push(rec)
	if !rec.Sent {
		t.snap.Dropped++
	}
	t.mu.Unlock()
}

// SetKeyboardConnected sets the keyboard link status.
func (t *Tracker) SetKeyboardConnected(connected bool) {
	t.mu.Lock()
	t.snap.KeyboardConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Recent = t.history.list()
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
