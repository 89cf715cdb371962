//go:build !linux

package led

import "errors"

// GPIOIndicator is not available on non-Linux platforms.
type GPIOIndicator struct{}

// NewGPIOIndicator returns an error on non-Linux platforms.
func NewGPIOIndicator(chip string, offset int) (*GPIOIndicator, error) {
	return nil, errors.New("led: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (g *GPIOIndicator) Set(on bool) error {
	return errors.New("led: not supported")
}

// Close is not implemented on non-Linux platforms.
func (g *GPIOIndicator) Close() error {
	return nil
}
