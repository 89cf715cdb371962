package logic

import "time"

// Classifier turns raw samples of both channels into gesture events.
type Classifier struct {
	cfg           Config
	left          Channel
	right         Channel
	calibrated    bool
	startTime     time.Time
	counts        GestureCounts
	lastHeartbeat time.Time
}

// NewClassifier creates a classifier whose warm-up starts at startTime.
// The startTime is also used for calculating uptime in heartbeat events.
func NewClassifier(cfg Config, startTime time.Time) *Classifier {
	return &Classifier{
		cfg:           cfg,
		left:          newChannel(Left, cfg),
		right:         newChannel(Right, cfg),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process takes a new input sample and returns any gestures that fired.
// No gestures are returned during calibration warm-up.
func (c *Classifier) Process(input Input) []GestureEvent {
	now := input.Time
	edgeL := c.left.sample(input.Left, now)
	edgeR := c.right.sample(input.Right, now)

	if !c.calibrated {
		if now.Sub(c.startTime) < c.cfg.CalibrationWarmup {
			warmup(&c.left, edgeL)
			warmup(&c.right, edgeR)
			return nil
		}
		c.calibrated = true
	}

	var events []GestureEvent

	// Edges first: a press that starts this cycle cannot resolve this cycle.
	if ev := c.edge(&c.left, edgeL, now); ev != nil {
		events = append(events, *ev)
	}
	if ev := c.edge(&c.right, edgeR, now); ev != nil {
		events = append(events, *ev)
	}

	// Combined long press is evaluated before, and instead of, the
	// individual checks whenever both channels are held.
	if c.left.State && c.right.State {
		if edgeL == NoEdge && edgeR == NoEdge &&
			c.left.longPressDue(now, c.cfg.LongPressDuration) &&
			c.right.longPressDue(now, c.cfg.LongPressDuration) {
			c.markLongPress(&c.left, now)
			c.markLongPress(&c.right, now)
			events = append(events, c.fire(Both, SimultaneousLongPress, now))
		}
	} else {
		for _, ch := range []*Channel{&c.left, &c.right} {
			edge := edgeL
			if ch == &c.right {
				edge = edgeR
			}
			if edge == NoEdge && ch.longPressDue(now, c.cfg.LongPressDuration) {
				c.markLongPress(ch, now)
				events = append(events, c.fire(ch.Side, LongPress, now))
			}
		}
	}

	if edgeL == NoEdge {
		if ev := c.resolveWindow(&c.left, now); ev != nil {
			events = append(events, *ev)
		}
	}
	if edgeR == NoEdge {
		if ev := c.resolveWindow(&c.right, now); ev != nil {
			events = append(events, *ev)
		}
	}

	return events
}

func warmup(ch *Channel, edge Edge) {
	switch edge {
	case Rising:
		ch.Suppressed = true
		ch.Phase = LongPressed
	case Falling:
		ch.Suppressed = false
		ch.Phase = Idle
	}
}

// edge applies a rising or falling edge to the channel's state machine.
func (c *Classifier) edge(ch *Channel, edge Edge, now time.Time) *GestureEvent {
	switch edge {
	case Rising:
		ch.Phase = Pressed
		return nil
	case Falling:
		return c.release(ch, now)
	}
	return nil
}

// release classifies a falling edge.
func (c *Classifier) release(ch *Channel, now time.Time) *GestureEvent {
	// Trailing edge of a press that was already consumed.
	if ch.LongPressFired || ch.Suppressed {
		ch.LongPressFired = false
		ch.Suppressed = false
		ch.Phase = Idle
		return nil
	}

	if ch.guarded(now) {
		if ch.FirstPressTime.IsZero() {
			ch.Phase = Idle
		} else {
			ch.Phase = AwaitingSecondPress
		}
		return nil
	}

	var ev *GestureEvent

	// The previous window expired while this press was held.
	if !ch.FirstPressTime.IsZero() && now.Sub(ch.FirstPressTime) > c.cfg.DoublePressWindow {
		if ch.PressCount == 1 {
			e := c.fire(ch.Side, ShortPress, now)
			ev = &e
		}
		ch.closeWindow()
	}

	ch.PressCount++
	ch.Processed = false
	ch.Phase = AwaitingSecondPress

	if ch.FirstPressTime.IsZero() {
		ch.FirstPressTime = now
	} else if ch.PressCount >= 2 && !ch.DoublePressResolved && now.Sub(ch.FirstPressTime) <= c.cfg.DoublePressWindow {
		ch.DoublePressResolved = true
		ch.PressCount = 0
		e := c.fire(ch.Side, DoublePress, now)
		ev = &e
	}

	if ev != nil {
		c.arm(ch, now)
	}
	return ev
}

// resolveWindow closes a double-press window once the channel has been quiet
// for the release quiet period, firing ShortPress for a lone release.
func (c *Classifier) resolveWindow(ch *Channel, now time.Time) *GestureEvent {
	if ch.State || ch.FirstPressTime.IsZero() || ch.guarded(now) {
		return nil
	}
	if now.Sub(ch.ReleaseTime) < c.cfg.ReleaseQuietPeriod {
		return nil
	}

	single := ch.PressCount == 1
	ch.closeWindow()
	ch.Phase = Idle
	if !single {
		return nil
	}
	ev := c.fire(ch.Side, ShortPress, now)
	c.arm(ch, now)
	return &ev
}

func (c *Classifier) markLongPress(ch *Channel, now time.Time) {
	ch.LongPressFired = true
	ch.Phase = LongPressed
	ch.closeWindow()
	c.arm(ch, now)
}

// arm sets the debounce deadline. Callers update state first.
func (c *Classifier) arm(ch *Channel, now time.Time) {
	ch.GuardUntil = now.Add(c.cfg.GuardDelay)
}

func (c *Classifier) fire(side Side, kind GestureKind, now time.Time) GestureEvent {
	switch kind {
	case ShortPress:
		c.counts.ShortPress++
	case LongPress:
		c.counts.LongPress++
	case DoublePress:
		c.counts.DoublePress++
	case SimultaneousLongPress:
		c.counts.SimultaneousLongPress++
	}
	return GestureEvent{Timestamp: now, Side: side, Kind: kind}
}

// IsCalibrated returns whether the warm-up period has finished.
func (c *Classifier) IsCalibrated() bool {
	return c.calibrated
}

// Channels returns copies of the current channel states.
func (c *Classifier) Channels() (left, right ChannelView) {
	return c.left.view(), c.right.view()
}

// Counts returns the gesture totals since startup.
func (c *Classifier) Counts() GestureCounts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if not yet calibrated, if the
// interval has not elapsed, or if interval is <= 0 (disabled).
func (c *Classifier) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 || !c.calibrated {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}
