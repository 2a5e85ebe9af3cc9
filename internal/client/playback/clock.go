package playback

import (
	"sync"
	"time"
)

// ClockElement is an Element that advances position with wall-clock time.
// The terminal client has no audio output of its own, so the transport is
// simulated against the track's known duration; the end-of-track callback
// fires once when the clock runs past it.
type ClockElement struct {
	durationOf func(url string) float64

	mu      sync.Mutex
	url     string
	dur     float64
	base    float64 // position when playback last started or was set
	started time.Time
	playing bool
	onEnded func()
	timer   *time.Timer
}

// NewClockElement builds a simulated element. durationOf resolves a loaded
// URL to its length in seconds; zero means unknown and disables the
// end-of-track callback for that URL.
func NewClockElement(durationOf func(url string) float64) *ClockElement {
	return &ClockElement{durationOf: durationOf}
}

func (e *ClockElement) Load(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.url = url
	e.dur = e.durationOf(url)
	e.base = 0
	e.playing = false
}

func (e *ClockElement) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		return
	}
	e.playing = true
	e.started = time.Now()
	e.armTimerLocked()
}

func (e *ClockElement) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return
	}
	e.base = e.positionLocked()
	e.playing = false
	e.stopTimerLocked()
}

func (e *ClockElement) Seek(seconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if e.dur > 0 && seconds > e.dur {
		seconds = e.dur
	}
	e.base = seconds
	e.started = time.Now()
	if e.playing {
		e.stopTimerLocked()
		e.armTimerLocked()
	}
}

func (e *ClockElement) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.positionLocked()
}

func (e *ClockElement) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dur
}

func (e *ClockElement) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

func (e *ClockElement) positionLocked() float64 {
	pos := e.base
	if e.playing {
		pos += time.Since(e.started).Seconds()
	}
	if e.dur > 0 && pos > e.dur {
		pos = e.dur
	}
	return pos
}

func (e *ClockElement) armTimerLocked() {
	if e.dur <= 0 {
		return
	}
	remaining := e.dur - e.base
	if remaining < 0 {
		remaining = 0
	}
	e.timer = time.AfterFunc(time.Duration(remaining*float64(time.Second)), e.fireEnded)
}

func (e *ClockElement) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *ClockElement) fireEnded() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}
	e.base = e.dur
	e.playing = false
	e.timer = nil
	fn := e.onEnded
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}
