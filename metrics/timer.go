package metrics

import (
	"time"
)

type Timer struct {
	client Client
	start  time.Time
	name   string
	tags   Tags
}

func NewTimer(client Client, name string, tags Tags) *Timer {
	return &Timer{
		client: client,
		start:  time.Now(),
		name:   name,
		tags:   tags,
	}
}

// Stop the timer and send the elapsed time as a timing metric
func (t *Timer) Stop() {
	elapsed := time.Since(t.start)
	t.client.Timing(t.name, t.tags, elapsed)
}
