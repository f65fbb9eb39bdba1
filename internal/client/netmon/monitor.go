// Package netmon watches server reachability and reports online/offline
// transitions as events.
package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notehub/internal/logging"
)

// Pinger is anything that can tell whether the server is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Event is emitted once per transition.
type Event struct {
	Online bool
	At     time.Time
}

const eventBuffer = 16

// Monitor probes a Pinger periodically. The first probe establishes the
// initial status without emitting an event; every later change of status
// emits exactly one Event.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	log      logging.Logger

	mu     sync.RWMutex
	online bool
	known  bool

	events chan Event
}

func New(p Pinger, interval, timeout time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		pinger:   p,
		interval: interval,
		timeout:  timeout,
		log:      log,
		events:   make(chan Event, eventBuffer),
	}
}

// Events returns the channel transitions are delivered on. It is never closed.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Online reports the last known status. Before the first probe it is false.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Check probes once and returns the resulting status.
func (m *Monitor) Check(ctx context.Context) bool {
	var (
		probeCtx context.Context
		cancel   context.CancelFunc
	)
	if m.timeout > 0 {
		probeCtx, cancel = context.WithTimeout(ctx, m.timeout)
	} else {
		probeCtx, cancel = context.WithCancel(ctx)
	}
	err := m.pinger.Ping(probeCtx)
	cancel()

	online := err == nil
	if err != nil {
		m.log.Debug(ctx, "server probe failed", "error", err)
	}

	m.mu.Lock()
	changed := m.known && m.online != online
	m.online = online
	m.known = true
	m.mu.Unlock()

	if changed {
		m.log.Info(ctx, "connectivity changed", "online", online)
		select {
		case m.events <- Event{Online: online, At: time.Now()}:
		case <-ctx.Done():
		}
	}
	return online
}

// Run probes every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Check(ctx)
		case <-ctx.Done():
			return nil
		}
	}
}
