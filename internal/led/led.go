// Package led drives the "ready" indicator LED.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package led

// Indicator is a single on/off light.
type Indicator interface {
	// Set turns the light on or off.
	Set(on bool) error

	// Close turns the light off and releases GPIO resources.
	Close() error
}

// Defaults (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultLine = 17
)

// Ready is the indicator state: lit once calibration has finished and the
// keyboard link is up.
func Ready(calibrated, connected bool) bool {
	return calibrated && connected
}

// Latch wraps an Indicator and only writes on change.
type Latch struct {
	ind   Indicator
	known bool
	on    bool
}

// NewLatch creates a Latch over ind. The first Set always writes.
func NewLatch(ind Indicator) *Latch {
	return &Latch{ind: ind}
}

// Set forwards on to the indicator if it differs from the last written state.
func (l *Latch) Set(on bool) error {
	if l.known && l.on == on {
		return nil
	}
	if err := l.ind.Set(on); err != nil {
		return err
	}
	l.known = true
	l.on = on
	return nil
}

// On reports the last written state.
func (l *Latch) On() bool {
	return l.on
}
