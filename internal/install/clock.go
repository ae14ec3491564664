package install

import "time"

// Clock abstracts timers so the payload poll can be driven by tests
// without real delays.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// SystemClock returns a Clock backed by time.After.
func SystemClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
