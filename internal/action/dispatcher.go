// Package action maps classified gestures to keyboard commands.
package action

import (
	"log/slog"
	"time"

	"github.com/sweeney/forcepad/internal/keyboard"
	"github.com/sweeney/forcepad/internal/logic"
)

// CommandFor returns the command bound to a gesture.
func CommandFor(ev logic.GestureEvent) (logic.Command, bool) {
	switch ev.Kind {
	case logic.ShortPress:
		return logic.PlayPause, true
	case logic.LongPress:
		switch ev.Side {
		case logic.Left:
			return logic.VolumeDown, true
		case logic.Right:
			return logic.VolumeUp, true
		}
	case logic.DoublePress:
		switch ev.Side {
		case logic.Left:
			return logic.PreviousTrack, true
		case logic.Right:
			return logic.NextTrack, true
		}
	case logic.SimultaneousLongPress:
		return logic.AssistantModifierKey, true
	}
	return "", false
}

// Dispatcher forwards gestures to a keyboard. Commands issued while the
// keyboard is disconnected are dropped, never queued.
type Dispatcher struct {
	kb     keyboard.Keyboard
	hold   time.Duration
	logger *slog.Logger

	held      logic.Command
	releaseAt time.Time
	dropped   int
}

// NewDispatcher creates a dispatcher. hold is how long the assistant
// modifier stays pressed.
func NewDispatcher(kb keyboard.Keyboard, hold time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{kb: kb, hold: hold, logger: logger}
}

// Dispatch sends the command for ev. It reports whether the command was handed
// to the keyboard.
func (d *Dispatcher) Dispatch(ev logic.GestureEvent) bool {
	cmd, ok := CommandFor(ev)
	if !ok {
		d.logger.Warn("no command bound to gesture", "side", ev.Side, "kind", ev.Kind)
		return false
	}

	if !d.kb.IsConnected() {
		d.dropped++
		d.logger.Warn("keyboard not connected, dropping command", "command", cmd, "kind", ev.Kind)
		return false
	}

	if cmd == logic.AssistantModifierKey {
		return d.summon(ev.Timestamp)
	}

	if err := d.kb.Write(cmd); err != nil {
		d.logger.Error("key write failed", "command", cmd, "error", err)
		return false
	}
	d.logger.Info("command sent", "command", cmd, "side", ev.Side, "kind", ev.Kind)
	return true
}

// summon presses the assistant modifier and schedules its release.
func (d *Dispatcher) summon(now time.Time) bool {
	if d.held != "" {
		d.logger.Warn("assistant modifier already held, ignoring", "release_at", d.releaseAt)
		return false
	}
	if err := d.kb.Press(logic.AssistantModifierKey); err != nil {
		d.logger.Error("key press failed", "command", logic.AssistantModifierKey, "error", err)
		return false
	}
	d.held = logic.AssistantModifierKey
	d.releaseAt = now.Add(d.hold)
	d.logger.Info("assistant modifier pressed", "release_at", d.releaseAt)
	return true
}

// Tick releases a held key once its deadline has passed.
func (d *Dispatcher) Tick(now time.Time) {
	if d.held == "" || now.Before(d.releaseAt) {
		return
	}
	d.release()
}

// Flush releases a held key immediately. Used on shutdown.
func (d *Dispatcher) Flush() {
	if d.held != "" {
		d.release()
	}
}

func (d *Dispatcher) release() {
	cmd := d.held
	d.held = ""
	d.releaseAt = time.Time{}

	if !d.kb.IsConnected() {
		d.logger.Warn("keyboard not connected, cannot release key", "command", cmd)
		return
	}
	if err := d.kb.Release(cmd); err != nil {
		d.logger.Error("key release failed", "command", cmd, "error", err)
		return
	}
	d.logger.Info("key released", "command", cmd)
}

// Holding reports whether a key is currently held down.
func (d *Dispatcher) Holding() bool {
	return d.held != ""
}

// Dropped returns how many commands were dropped while disconnected.
func (d *Dispatcher) Dropped() int {
	return d.dropped
}
