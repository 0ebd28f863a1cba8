// Package chantest provides helpers for testing code that blocks on
// channels.
package chantest

import (
	"sync"
	"time"

	"github.com/cschleiden/go-channel"
)

// RecordingScheduler parks and readies goroutines like the default
// scheduler and additionally records every park and ready. Tests use it
// to assert that an operation blocked at all, and in which order parked
// operations were woken.
//
// Park is invoked with the channel lock held, so the recorded park order
// is exactly the order in which operations joined the wait queues.
type RecordingScheduler struct {
	mu      sync.Mutex
	parked  []*channel.Thread
	readied []*channel.Thread
}

var _ channel.Scheduler = (*RecordingScheduler)(nil)

func NewRecordingScheduler() *RecordingScheduler {
	return &RecordingScheduler{}
}

// Park implements channel.Scheduler
func (s *RecordingScheduler) Park(t *channel.Thread, unlock func()) {
	s.mu.Lock()
	s.parked = append(s.parked, t)
	s.mu.Unlock()

	unlock()
	t.Suspend()
}

// Ready implements channel.Scheduler
func (s *RecordingScheduler) Ready(t *channel.Thread) {
	s.mu.Lock()
	s.readied = append(s.readied, t)
	s.mu.Unlock()

	t.Resume()
}

// Parked returns the threads parked so far, in park order.
func (s *RecordingScheduler) Parked() []*channel.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*channel.Thread(nil), s.parked...)
}

// Readied returns the threads readied so far, in ready order.
func (s *RecordingScheduler) Readied() []*channel.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*channel.Thread(nil), s.readied...)
}

func (s *RecordingScheduler) ParkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.parked)
}

func (s *RecordingScheduler) ReadyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.readied)
}

// WaitParked polls until at least n threads are parked or the timeout
// elapses, and reports whether the count was reached. It is the usual
// way for a test to wait for a concurrent operation to block.
func (s *RecordingScheduler) WaitParked(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for s.ParkCount() < n {
		if time.Now().After(deadline) {
			return false
		}

		time.Sleep(time.Millisecond)
	}

	return true
}
