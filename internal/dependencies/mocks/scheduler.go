package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/wordgame-go/internal/dependencies/scheduler"
)

// MockScheduler queues tasks until the test runs them
type MockScheduler struct {
	mu     sync.Mutex
	tasks  []func()
	Delays []time.Duration
}

// Ensure MockScheduler implements Scheduler
var _ scheduler.Scheduler = (*MockScheduler)(nil)

// NewMockScheduler creates a new MockScheduler
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{}
}

// AfterFunc records the task and its delay
func (s *MockScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, f)
	s.Delays = append(s.Delays, d)
}

// Pending returns the number of tasks not yet run
func (s *MockScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// RunPending runs every queued task, including tasks queued while running
func (s *MockScheduler) RunPending() int {
	ran := 0
	for {
		s.mu.Lock()
		if len(s.tasks) == 0 {
			s.mu.Unlock()
			return ran
		}
		task := s.tasks[0]
		s.tasks = s.tasks[1:]
		s.mu.Unlock()
		task()
		ran++
	}
}

// RunNext runs the oldest queued task and reports whether one existed
func (s *MockScheduler) RunNext() bool {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		return false
	}
	task := s.tasks[0]
	s.tasks = s.tasks[1:]
	s.mu.Unlock()
	task()
	return true
}
