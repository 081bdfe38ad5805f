package scheduler

import "time"

// Scheduler runs deferred work. Tasks are never cancelled.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler runs each task on its own timer
type TimerScheduler struct{}

// New creates a new TimerScheduler
func New() *TimerScheduler {
	return &TimerScheduler{}
}

// AfterFunc calls f in its own goroutine after d has elapsed
func (s *TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
