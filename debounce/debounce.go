// Package debounce collapses bursts of calls into a single action that runs once
// a slot has been quiet for the configured window.
package debounce

import (
	"sync"
	"time"
)

const DefaultWindow = 275 * time.Millisecond

type pending struct {
	timer *time.Timer
}

type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	pending map[string]*pending
	stopped bool
}

func New(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{window: window, pending: make(map[string]*pending)}
}

func (d *Debouncer) Window() time.Duration {
	return d.window
}

// Schedule runs action after the window unless the slot is scheduled again or
// cancelled first. Rescheduling drops the previous action and restarts the window.
func (d *Debouncer) Schedule(slot string, action func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if prev, ok := d.pending[slot]; ok {
		prev.timer.Stop()
	}
	p := &pending{}
	d.pending[slot] = p
	p.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		// a timer that fired while being replaced must not run
		if d.pending[slot] != p {
			d.mu.Unlock()
			return
		}
		delete(d.pending, slot)
		d.mu.Unlock()
		action()
	})
}

// Cancel drops the pending action of slot and reports whether there was one.
func (d *Debouncer) Cancel(slot string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[slot]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, slot)
	return true
}

// Pending reports whether slot has an action waiting.
func (d *Debouncer) Pending(slot string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[slot]
	return ok
}

// Stop drops every pending action; later schedules are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for slot, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, slot)
	}
	d.stopped = true
}
