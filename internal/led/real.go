//go:build linux

package led

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOIndicator drives an LED from a GPIO output line.
type GPIOIndicator struct {
	line *gpiocdev.Line
}

// NewGPIOIndicator requests the given line as an output, initially off.
func NewGPIOIndicator(chip string, offset int) (*GPIOIndicator, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request LED line %s:%d: %w", chip, offset, err)
	}
	return &GPIOIndicator{line: line}, nil
}

// Set drives the line high for on and low for off.
func (g *GPIOIndicator) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := g.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED: %w", err)
	}
	return nil
}

// Close turns the LED off and returns the line to an input with pull-down
// (matching Pi boot defaults) before releasing it.
func (g *GPIOIndicator) Close() error {
	var errs []error

	if err := g.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear LED: %w", err))
	}
	if err := g.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure LED line: %w", err))
	}
	if err := g.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close LED line: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
