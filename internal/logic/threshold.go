package logic

import "math"

// Thresholder tracks a running baseline of unpressed samples and derives
// the press threshold from it.
type Thresholder struct {
	factor float64
	floor  float64

	// pressed is the result of the previous Observe.
	pressed bool

	Baseline    float64
	SampleCount int
	Threshold   float64
}

// NewThresholder creates a cold thresholder. Its threshold starts at floor.
func NewThresholder(factor, floor float64) Thresholder {
	return Thresholder{
		factor:    factor,
		floor:     floor,
		Threshold: floor,
	}
}

// Observe folds raw into the baseline unless the previous sample was pressed,
// recomputes the threshold, then binarizes raw against it. A resting level at
// or above the cold floor therefore converges instead of latching pressed.
func (t *Thresholder) Observe(raw int) bool {
	if !t.pressed {
		n := float64(t.SampleCount)
		t.Baseline = (t.Baseline*n + float64(raw)) / (n + 1)
		t.SampleCount++
		t.Threshold = math.Max(t.Baseline*t.factor, t.floor)
	}

	t.pressed = float64(raw) >= t.Threshold
	return t.pressed
}
