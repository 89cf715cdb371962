package led

// FakeIndicator records every state written to it.
type FakeIndicator struct {
	// Writes contains every value passed to Set.
	Writes []bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeIndicator creates a FakeIndicator.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// Set records the value.
func (f *FakeIndicator) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, on)
	return nil
}

// On reports the last written value.
func (f *FakeIndicator) On() bool {
	return len(f.Writes) > 0 && f.Writes[len(f.Writes)-1]
}

// Close marks the indicator as closed.
func (f *FakeIndicator) Close() error {
	f.Closed = true
	return nil
}
