package p

import "sync"

// The analyzer is syntactic and matches on method names, so a local
// stand-in for the channel type is enough for the tests.
type channel struct{}

func (c *channel) Send(v int)                            {}
func (c *channel) SendNonblocking(v int) bool            { return false }
func (c *channel) Receive() (int, bool)                  { return 0, false }
func (c *channel) ReceiveNonblocking() (int, bool, bool) { return 0, false, false }

var mu sync.Mutex
var c channel

func sendWhileLocked() {
	mu.Lock()
	c.Send(1) // want "Send called while mu is held"
	mu.Unlock()
}

func sendAfterUnlock() {
	mu.Lock()
	mu.Unlock()
	c.Send(1)
}

func nonblockingWhileLocked() {
	mu.Lock()
	c.SendNonblocking(1)
	_, _, _ = c.ReceiveNonblocking()
	mu.Unlock()
}

func receiveWhileLocked() {
	mu.Lock()
	v, ok := c.Receive() // want "Receive called while mu is held"
	_ = v
	_ = ok
	mu.Unlock()
}

func lockOnlyInBranch(b bool) {
	if b {
		mu.Lock()
		c.Send(1) // want "Send called while mu is held"
		mu.Unlock()
	}

	c.Send(2)
}

type server struct {
	mu sync.Mutex
	ch channel
}

func (s *server) handle() {
	s.mu.Lock()
	s.ch.Send(1) // want "Send called while s.mu is held"
	s.mu.Unlock()
}
