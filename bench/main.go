package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/cschleiden/go-channel"
)

var capacity = flag.Int("capacity", 128, "Channel capacity. 0 benchmarks the unbuffered hand-off path")
var producers = flag.Int("producers", 4, "Number of goroutines sending values")
var consumers = flag.Int("consumers", 4, "Number of goroutines receiving values")
var count = flag.Int("count", 1_000_000, "Total number of values to send across all producers")
var payloadSize = flag.Int("payloadsize", 100, "Size of each value in bytes")
var nonblocking = flag.Bool("nonblocking", false, "Use the non-blocking send variant and spin on a full buffer")
var format = flag.String("format", "text", "Output format. Supported formats are:\n- text\n- csv\n")

func main() {
	flag.Parse()

	mm := newMemMetrics()
	c := channel.NewBuffered[[]byte](*capacity,
		channel.WithLogger(slog.New(&nullHandler{})),
		channel.WithMetrics(mm),
	)

	payload := make([]byte, *payloadSize)
	perProducer := *count / *producers

	received := make([]int, *consumers)

	var producerWg sync.WaitGroup
	var consumerWg sync.WaitGroup

	start := time.Now()

	for i := 0; i < *consumers; i++ {
		consumerWg.Add(1)
		go func(i int) {
			defer consumerWg.Done()

			for {
				_, ok := c.Receive()
				if !ok {
					return
				}

				received[i]++
			}
		}(i)
	}

	for i := 0; i < *producers; i++ {
		producerWg.Add(1)
		go func() {
			defer producerWg.Done()

			for j := 0; j < perProducer; j++ {
				if *nonblocking {
					for !c.SendNonblocking(payload) {
					}
				} else {
					c.Send(payload)
				}
			}
		}()
	}

	producerWg.Wait()
	c.Close()
	consumerWg.Wait()

	end := time.Now()

	total := 0
	for _, n := range received {
		total += n
	}

	elapsed := end.Sub(start).Seconds()

	switch *format {
	case "text":
		log.Println("Moved", total, "values in", elapsed, "seconds,", fmt.Sprintf("%.0f", float64(total)/elapsed), "values/s")
		mm.Print()

	case "csv":
		fmt.Printf(
			"%d,%d,%d,%d,%d,%v,%v\n",
			*capacity, *producers, *consumers, total, *payloadSize, *nonblocking, elapsed)

	default:
		panic("unknown format " + *format)
	}
}
