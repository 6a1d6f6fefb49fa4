// Package eventstest provides an in-memory lifecycle channel for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/FredericTischler/safe-zone/internal/events"
)

// Bus is an in-memory, partitioned, at-least-once channel. Events are delivered
// by explicit Drain calls so tests control timing, failures and redelivery.
type Bus struct {
	mu            sync.Mutex
	partitions    int
	maxDeliveries int
	queues        [][]entry
	published     []events.Event
	dead          []events.Event
	publishErr    error
}

type entry struct {
	ev       events.Event
	attempts int
}

var _ events.Publisher = (*Bus)(nil)

// New returns a bus with n partitions that dead-letters after maxDeliveries failures.
func New(n, maxDeliveries int) *Bus {
	if n < 1 {
		n = 1
	}
	if maxDeliveries < 1 {
		maxDeliveries = 1
	}
	return &Bus{partitions: n, maxDeliveries: maxDeliveries, queues: make([][]entry, n)}
}

// Publish enqueues ev on its resource's partition.
func (b *Bus) Publish(_ context.Context, ev events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishErr != nil {
		return b.publishErr
	}
	p := events.Partition(ev.ResourceID, b.partitions)
	b.queues[p] = append(b.queues[p], entry{ev: ev})
	b.published = append(b.published, ev)
	return nil
}

// FailPublish makes subsequent Publish calls return err (nil restores).
func (b *Bus) FailPublish(err error) {
	b.mu.Lock()
	b.publishErr = err
	b.mu.Unlock()
}

// Published returns every accepted event in publish order.
func (b *Bus) Published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.published...)
}

// DeadLetters returns events that exhausted their deliveries.
func (b *Bus) DeadLetters() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.dead...)
}

// Pending reports events not yet acknowledged.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, q := range b.queues {
		n += len(q)
	}
	return n
}

// Redeliver re-enqueues every event published so far, simulating duplicates.
func (b *Bus) Redeliver() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range b.published {
		p := events.Partition(ev.ResourceID, b.partitions)
		b.queues[p] = append(b.queues[p], entry{ev: ev})
	}
}

// Drain delivers queued events to h, in order per partition. A failed event
// stays at the head of its partition, blocking later ones, until it succeeds on
// a later Drain or is dead-lettered. Returns how many were acknowledged.
func (b *Bus) Drain(ctx context.Context, h events.Handler) int {
	acked := 0
	for p := 0; p < b.partitions; p++ {
		for {
			b.mu.Lock()
			if len(b.queues[p]) == 0 {
				b.mu.Unlock()
				break
			}
			head := b.queues[p][0]
			b.mu.Unlock()

			err := h(ctx, head.ev)

			b.mu.Lock()
			if err == nil {
				b.queues[p] = b.queues[p][1:]
				acked++
				b.mu.Unlock()
				continue
			}
			b.queues[p][0].attempts++
			if b.queues[p][0].attempts >= b.maxDeliveries {
				b.dead = append(b.dead, head.ev)
				b.queues[p] = b.queues[p][1:]
				b.mu.Unlock()
				continue
			}
			b.mu.Unlock()
			break
		}
	}
	return acked
}
