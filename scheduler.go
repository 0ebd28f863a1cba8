package channel

// A Thread identifies a single parked operation to the scheduler. Threads
// are single-use: each one is created for one blocking operation and sees
// exactly one Suspend/Resume pair before the channel recycles it.
type Thread struct {
	wake chan struct{}
}

func newThread() *Thread {
	return &Thread{wake: make(chan struct{}, 1)}
}

// Suspend blocks the caller until Resume is called for the same thread.
// The wake token is buffered, so a Resume that happens before Suspend is
// not lost; the suspend then returns immediately.
func (t *Thread) Suspend() {
	<-t.wake
}

// Resume unblocks the party suspended on t. It never blocks.
func (t *Thread) Resume() {
	t.wake <- struct{}{}
}

// Scheduler suspends and resumes the execution contexts that block on a
// channel. The default scheduler parks plain goroutines; callers that
// multiplex their own execution contexts, or that want deterministic
// control in tests, plug in their own with WithScheduler.
//
// Implementations must uphold two rules:
//
//   - Park is entered with the channel lock held. The implementation must
//     call unlock before suspending, and only once the thread is
//     registered well enough that a concurrent Ready for it will not be
//     lost. Suspending via Thread.Suspend satisfies this trivially.
//
//   - Ready is only ever called after the channel lock has been released,
//     exactly once per parked thread, from an arbitrary goroutine. It
//     must not block. By the time Ready is called the operation's outcome
//     is already decided, so the woken party needs no further channel
//     state to proceed.
type Scheduler interface {
	Park(t *Thread, unlock func())
	Ready(t *Thread)
}

// goScheduler parks the calling goroutine itself.
type goScheduler struct{}

func (goScheduler) Park(t *Thread, unlock func()) {
	unlock()
	t.Suspend()
}

func (goScheduler) Ready(t *Thread) {
	t.Resume()
}
