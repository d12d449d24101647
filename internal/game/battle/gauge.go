package battle

import (
	"sync"
	"time"
)

// Gauge is the client-local action-readiness meter: it accumulates
// proportionally to a speed stat on every tick and fires a callback each
// time it saturates. It is pacing state only — never part of the persisted
// session — and is freely stoppable with no server-side cleanup obligation.
// Safe for concurrent use.
type Gauge struct {
	mu        sync.Mutex
	fill      int
	threshold int
	speed     int
	stopped   bool
	done      chan struct{}
}

// NewGauge creates a stopped gauge.
//
// Precondition: speed > 0; threshold > 0.
func NewGauge(speed, threshold int) *Gauge {
	return &Gauge{
		speed:     speed,
		threshold: threshold,
		done:      make(chan struct{}),
	}
}

// Start begins accumulating every tick, invoking onReady from the gauge
// goroutine each time the meter saturates. The meter resets after firing so
// a long-lived gauge paces repeated submissions.
//
// Precondition: tick > 0; onReady must not be nil; Start must be called at
// most once.
// Postcondition: onReady fires roughly every threshold/speed ticks until
// Stop is called.
func (g *Gauge) Start(tick time.Duration, onReady func()) {
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-g.done:
				return
			case <-ticker.C:
				if g.advance() {
					onReady()
				}
			}
		}
	}()
}

// advance adds one tick of fill and reports whether the gauge saturated.
func (g *Gauge) advance() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return false
	}
	g.fill += g.speed
	if g.fill < g.threshold {
		return false
	}
	g.fill -= g.threshold
	return true
}

// Fill returns the current accumulated value, for display.
func (g *Gauge) Fill() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fill
}

// Stop halts accumulation. Safe to call multiple times.
//
// Postcondition: onReady never fires after Stop returns.
func (g *Gauge) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stopped {
		return
	}
	g.stopped = true
	close(g.done)
}
