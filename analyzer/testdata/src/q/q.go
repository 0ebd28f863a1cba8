// nolint
package q

import "sync"

type channel struct{}

func (c *channel) Receive() (int, bool) { return 0, false }

var mu sync.Mutex
var c channel

// A deferred Unlock keeps the lock held for the whole function, so the
// receive inside the loop is still under the lock.
func drainWhileLocked() {
	mu.Lock()
	defer mu.Unlock()

	for {
		_, ok := c.Receive() // want "Receive called while mu is held"
		if !ok {
			return
		}
	}
}
