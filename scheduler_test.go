package channel

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func Test_Thread_ResumeBeforeSuspend(t *testing.T) {
	defer goleak.VerifyNone(t)

	th := newThread()

	// The wake token is sticky, a Resume that wins the race against
	// Suspend must not be lost
	th.Resume()

	done := make(chan struct{})
	go func() {
		defer close(done)
		th.Suspend()
	}()

	waitDone(t, done)
}

func Test_GoScheduler_UnlocksBeforeSuspending(t *testing.T) {
	defer goleak.VerifyNone(t)

	var s goScheduler
	th := newThread()

	unlocked := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.Park(th, func() {
			close(unlocked)
		})
	}()

	// unlock runs before the goroutine suspends
	waitDone(t, unlocked)

	select {
	case <-done:
		t.Fatal("park returned before ready")
	case <-time.After(10 * time.Millisecond):
	}

	s.Ready(th)
	waitDone(t, done)
}

func Test_GoScheduler_ReadyFromOtherGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	var s goScheduler

	var mu sync.Mutex
	var wg sync.WaitGroup

	// A batch of park/ready pairs against the same lock, as the channel
	// produces them
	for i := 0; i < 50; i++ {
		th := newThread()

		wg.Add(2)

		mu.Lock()
		go func() {
			defer wg.Done()
			s.Park(th, mu.Unlock)
		}()

		go func() {
			defer wg.Done()
			mu.Lock()
			mu.Unlock()
			s.Ready(th)
		}()

		wg.Wait()
	}
}
