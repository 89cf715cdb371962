// Package sensor provides force sensor reading with hardware abstraction.
// The real implementation polls an ADC bridge over a serial line.
// The fake implementation allows testing without hardware.
package sensor

// Reader reads both force channels.
type Reader interface {
	// Read returns the latest raw samples for the left and right channels.
	Read() (int, int, error)

	// Close releases the underlying device.
	Close() error
}

// Serial defaults for the ADC bridge.
const (
	DefaultDevice = "/dev/ttyUSB0"
	DefaultBaud   = 115200
)
