package shared

import (
	"context"
	"time"
)

// Clock is an abstraction for time operations, allowing time to be mocked in tests.
// Every cooldown wait, backoff and debounce in the daemon goes through a Clock so
// that tests never block on real time.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
	// SleepCtx blocks for d or until ctx is cancelled, whichever comes first.
	// Returns ctx.Err() when interrupted.
	SleepCtx(ctx context.Context, d time.Duration) error
}

// RealClock implements Clock using the actual system time
type RealClock struct{}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

// Now returns the current system time in UTC
func (r *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Sleep blocks for the given duration
func (r *RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// SleepCtx blocks for d, honoring context cancellation
func (r *RealClock) SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MockClock implements Clock with a controllable time for testing
type MockClock struct {
	CurrentTime time.Time
}

// NewMockClock creates a MockClock starting at the given time.
// If zero time is provided, starts at the current time.
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Now().UTC()
	}
	return &MockClock{CurrentTime: startTime}
}

// Now returns the mock's current time
func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

// Sleep advances the mock clock without blocking (instant in tests)
func (m *MockClock) Sleep(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SleepCtx advances the mock clock instantly unless ctx is already cancelled
func (m *MockClock) SleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.CurrentTime = m.CurrentTime.Add(d)
	return nil
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.CurrentTime = t
}
