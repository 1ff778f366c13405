package client

import (
	"sync"
)

// eventQueue is an unbounded FIFO of deliveries. The read loop pushes without
// ever blocking; a single event loop drains it.
type eventQueue struct {
	mu    sync.Mutex
	items []func()

	// ready holds a token while items is non empty
	ready chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(fn func()) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// take removes and returns everything queued so far.
func (q *eventQueue) take() []func() {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// eventLoop runs queued deliveries one at a time in arrival order. Events
// still queued when the connection stops are dropped.
func (c *Conn) eventLoop() {
	log := c.log.Named("eventLoop")

	defer log.Debug("Event loop exited")

	for {
		select {
		case <-c.ctx.Done():
			return

		case <-c.events.ready:
			for _, deliver := range c.events.take() {
				if !c.isRunning() {
					return
				}

				deliver()
			}
		}
	}
}
