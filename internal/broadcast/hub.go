// Package broadcast fans human-readable log lines out to attached observers.
package broadcast

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"cadence/internal/logging"
)

var (
	// ErrObserverFull reports a dropped line for an observer that is not keeping up.
	ErrObserverFull = errors.New("observer buffer full")
	// ErrObserverClosed reports delivery to an observer that has gone away.
	ErrObserverClosed = errors.New("observer closed")
)

// Observer receives broadcast lines. Send must not block for long; a failed
// delivery only affects the observer that failed.
type Observer interface {
	Send(line string) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(line string) error

// Send calls f(line).
func (f ObserverFunc) Send(line string) error { return f(line) }

// Hub holds the set of attached observers.
type Hub struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
	logger    *slog.Logger
}

// NewHub constructs an empty hub. Every broadcast line is also logged.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		observers: make(map[uint64]Observer),
		logger:    logging.NewComponentLogger(logger, "broadcast"),
	}
}

// Attach adds an observer and returns its handle for Detach. Attaching an
// observer that is already in the set returns its existing handle, so it
// still receives each line once. Observers of non-comparable types, such as
// ObserverFunc, cannot be matched and always get a new handle.
func (h *Hub) Attach(o Observer) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if o != nil && reflect.TypeOf(o).Comparable() {
		for id, existing := range h.observers {
			if reflect.TypeOf(existing).Comparable() && existing == o {
				return id
			}
		}
	}
	h.nextID++
	h.observers[h.nextID] = o
	return h.nextID
}

// Detach removes an observer. Unknown or already-detached handles are ignored.
func (h *Hub) Detach(id uint64) {
	h.mu.Lock()
	delete(h.observers, id)
	h.mu.Unlock()
}

// Len reports the number of attached observers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

// Broadcast delivers line to every observer attached at the time of the call.
// Observers may attach or detach concurrently.
func (h *Hub) Broadcast(line string) {
	if h == nil {
		return
	}
	h.logger.Info(line)

	h.mu.RLock()
	targets := make(map[uint64]Observer, len(h.observers))
	for id, o := range h.observers {
		targets[id] = o
	}
	h.mu.RUnlock()

	for id, o := range targets {
		if err := deliver(o, line); err != nil {
			h.logger.Debug("observer delivery failed",
				logging.Int64("observer_id", int64(id)),
				logging.Error(err),
			)
		}
	}
}

func deliver(o Observer, line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return o.Send(line)
}

// ChannelObserver buffers lines on a channel for a single consumer.
type ChannelObserver struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

// NewChannelObserver creates an observer with room for size pending lines.
func NewChannelObserver(size int) *ChannelObserver {
	if size <= 0 {
		size = 64
	}
	return &ChannelObserver{ch: make(chan string, size)}
}

// Send queues line without blocking.
func (c *ChannelObserver) Send(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrObserverClosed
	}
	select {
	case c.ch <- line:
		return nil
	default:
		return ErrObserverFull
	}
}

// Lines returns the receive side. It is closed by Close.
func (c *ChannelObserver) Lines() <-chan string {
	return c.ch
}

// Close stops delivery. It is safe to call more than once.
func (c *ChannelObserver) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
