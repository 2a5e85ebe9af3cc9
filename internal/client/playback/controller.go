// Package playback drives the single audio element across an episode queue.
//
// The controller owns the element exclusively; no other component may attach
// to it. The queue always reflects the currently filtered and searched list,
// so "next" and "previous" follow the user's filter, not the full catalogue.
package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/caminho-app/caminho/internal/logging"
	"github.com/caminho-app/caminho/internal/metrics"
)

// Track is one playable queue entry.
type Track struct {
	ID       string
	Title    string
	AudioURL string
	Duration int // seconds
}

// Element is the platform audio sink. Implementations fire the registered
// end-of-track callback exactly once per natural track end.
type Element interface {
	Load(url string)
	Play()
	Pause()
	Seek(seconds float64)
	Position() float64
	Duration() float64
	OnEnded(fn func())
}

// PositionStore persists listening positions between sessions.
// *store.PositionRepo satisfies it.
type PositionStore interface {
	Save(ctx context.Context, trackID string, seconds float64) error
	Get(ctx context.Context, trackID string) (float64, error)
}

var ErrUnknownTrack = errors.New("track is not in the current queue")

type Controller struct {
	element   Element
	positions PositionStore
	log       logging.Logger
	metrics   metrics.Collector

	mu        sync.Mutex
	queue     []Track
	currentID string
	playing   bool
}

func NewController(element Element, positions PositionStore, log logging.Logger, m metrics.Collector) *Controller {
	if m == nil {
		m = metrics.Nop{}
	}
	c := &Controller{element: element, positions: positions, log: log, metrics: m}
	element.OnEnded(func() { c.Advance(context.Background()) })
	return c
}

// SetQueue replaces the queue with the current filtered ordering. The active
// track keeps playing even when filtered out; only next/previous change
// meaning.
func (c *Controller) SetQueue(tracks []Track) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = tracks
}

// Play toggles play/pause when trackID is already active; otherwise it
// switches the element to the new track and starts from position 0.
func (c *Controller) Play(ctx context.Context, trackID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if trackID == c.currentID && c.currentID != "" {
		if c.playing {
			c.pauseLocked(ctx)
		} else {
			c.element.Play()
			c.playing = true
		}
		return nil
	}

	track, ok := c.find(trackID)
	if !ok {
		return ErrUnknownTrack
	}
	c.switchTo(ctx, track)
	return nil
}

// Pause halts playback, keeping the position.
func (c *Controller) Pause(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		c.pauseLocked(ctx)
	}
}

// Resume continues the current track from its saved position. Used when the
// listener comes back in a fresh session.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentID == "" {
		return ErrUnknownTrack
	}
	if c.positions != nil {
		if pos, err := c.positions.Get(ctx, c.currentID); err == nil && pos > 0 {
			c.element.Seek(pos)
		}
	}
	c.element.Play()
	c.playing = true
	return nil
}

// Advance moves to the next track in the filtered ordering. On the last
// track it stops playback and holds position rather than wrapping.
func (c *Controller) Advance(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(c.currentID)
	if idx < 0 || idx+1 >= len(c.queue) {
		if c.playing {
			c.pauseLocked(ctx)
		}
		return
	}
	c.switchTo(ctx, c.queue[idx+1])
}

// Previous moves to the prior track, restarting the first track rather than
// going anywhere past the top of the list.
func (c *Controller) Previous(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(c.currentID)
	if idx < 0 {
		return
	}
	if idx == 0 {
		c.element.Seek(0)
		return
	}
	c.switchTo(ctx, c.queue[idx-1])
}

// Seek scrubs directly to the clamped position.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	if d := c.element.Duration(); seconds > d {
		seconds = d
	}
	c.element.Seek(seconds)
}

// Now reports the transport state for display.
func (c *Controller) Now() (trackID string, playing bool, position, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID, c.playing, c.element.Position(), c.element.Duration()
}

func (c *Controller) pauseLocked(ctx context.Context) {
	c.element.Pause()
	c.playing = false
	c.savePosition(ctx)
}

func (c *Controller) switchTo(ctx context.Context, track Track) {
	if c.currentID != "" {
		c.savePosition(ctx)
	}
	c.element.Load(track.AudioURL)
	c.element.Play()
	c.currentID = track.ID
	c.playing = true
	c.metrics.RecordTrackSwitch()
	c.log.Debug(ctx, "track switched", "id", track.ID, "title", track.Title)
}

func (c *Controller) savePosition(ctx context.Context) {
	if c.positions == nil || c.currentID == "" {
		return
	}
	if err := c.positions.Save(ctx, c.currentID, c.element.Position()); err != nil {
		c.log.Warn(ctx, "saving playback position failed", "track", c.currentID, "error", err)
	}
}

func (c *Controller) find(id string) (Track, bool) {
	for _, t := range c.queue {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

func (c *Controller) indexOf(id string) int {
	for i, t := range c.queue {
		if t.ID == id {
			return i
		}
	}
	return -1
}
