package logic

import "time"

// Edge is the transition seen on a channel in one cycle.
type Edge int

const (
	NoEdge Edge = iota
	Rising
	Falling
)

// Channel holds all per-side state. It is owned by the Classifier.
type Channel struct {
	Side Side

	Raw       int
	State     bool
	PrevState bool
	Threshold Thresholder

	PressStart  time.Time
	ReleaseTime time.Time

	LongPressFired bool
	// PressCount is the number of short releases in the current window.
	PressCount int
	// FirstPressTime is the zero time when no window is open.
	FirstPressTime      time.Time
	DoublePressResolved bool
	Processed           bool

	Phase Phase
	// GuardUntil is the debounce deadline armed after this channel fired.
	GuardUntil time.Time
	// Suppressed is set for a press that began during warm-up.
	Suppressed bool
}

func newChannel(side Side, cfg Config) Channel {
	return Channel{
		Side:      side,
		Threshold: NewThresholder(cfg.CalibrationFactor, cfg.ThresholdFloor),
		Phase:     Idle,
		Processed: true,
	}
}

// sample feeds a raw reading through the thresholder and edge detector.
func (c *Channel) sample(raw int, now time.Time) Edge {
	c.Raw = raw
	c.State = c.Threshold.Observe(raw)

	edge := NoEdge
	switch {
	case c.State && !c.PrevState:
		edge = Rising
		c.PressStart = now
		c.LongPressFired = false
	case !c.State && c.PrevState:
		edge = Falling
		c.ReleaseTime = now
	}
	c.PrevState = c.State
	return edge
}

// heldFor returns how long the current press has lasted.
func (c *Channel) heldFor(now time.Time) time.Duration {
	return now.Sub(c.PressStart)
}

func (c *Channel) guarded(now time.Time) bool {
	return now.Before(c.GuardUntil)
}

// longPressDue reports whether the held press has crossed the long-press mark.
func (c *Channel) longPressDue(now time.Time, d time.Duration) bool {
	return c.State && c.Phase == Pressed && !c.LongPressFired && !c.guarded(now) && c.heldFor(now) >= d
}

// closeWindow discards any open double-press window.
func (c *Channel) closeWindow() {
	c.PressCount = 0
	c.FirstPressTime = time.Time{}
	c.DoublePressResolved = false
	c.Processed = true
}

func (c *Channel) view() ChannelView {
	return ChannelView{
		Raw:        c.Raw,
		Pressed:    c.State,
		Baseline:   c.Threshold.Baseline,
		Threshold:  c.Threshold.Threshold,
		Samples:    c.Threshold.SampleCount,
		Phase:      c.Phase,
		PressCount: c.PressCount,
	}
}
