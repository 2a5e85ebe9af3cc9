// Package capture records microphone audio into an in-memory clip.
//
// A Recorder owns at most one recording session at a time. The session holds
// exclusive ownership of the hardware stream and releases it exactly once on
// every exit path: normal Stop, a mid-session device failure, or both.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caminho-app/caminho/internal/logging"
)

// MIMECandidates is the encoding negotiation order, best first. The first
// type the device supports wins; when none match, the device default is used.
var MIMECandidates = []string{
	"audio/webm;codecs=opus",
	"audio/mp4",
	"audio/ogg",
}

// Clip is a finished recording: one immutable audio object assembled from
// the session's chunks in arrival order.
type Clip struct {
	Data     []byte
	MIMEType string
	Duration time.Duration
}

type State int

const (
	StateIdle State = iota
	StateRecording
	StateStopped
)

var ErrAlreadyRecording = errors.New("recording already in progress")

type session struct {
	stream   Stream
	mimeType string
	started  time.Time
	ended    time.Time
	chunks   [][]byte

	releaseOnce sync.Once
	done        chan struct{}
}

// release closes the hardware stream. Guarded by a sync.Once so that the
// collector goroutine and Stop can both call it safely.
func (s *session) release() {
	s.releaseOnce.Do(func() { _ = s.stream.Close() })
}

type Recorder struct {
	device Device
	log    logging.Logger

	mu    sync.Mutex
	state State
	cur   *session
}

func NewRecorder(device Device, log logging.Logger) *Recorder {
	return &Recorder{device: device, log: log}
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start acquires the microphone and begins buffering encoded chunks.
// On failure the recorder stays idle and a later Start is clean.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateRecording {
		r.mu.Unlock()
		return ErrAlreadyRecording
	}
	r.mu.Unlock()

	mimeType := r.negotiate()

	stream, err := r.device.Open(ctx, mimeType)
	if err != nil {
		return fmt.Errorf("starting recording: %w", err)
	}

	s := &session{
		stream:   stream,
		mimeType: mimeType,
		started:  time.Now(),
		done:     make(chan struct{}),
	}

	r.mu.Lock()
	r.state = StateRecording
	r.cur = s
	r.mu.Unlock()

	r.log.Debug(ctx, "recording started", "mimeType", mimeType)
	go r.collect(s)
	return nil
}

// negotiate picks the best MIME type the device supports, or "" for the
// device default when nothing on the candidate list matches.
func (r *Recorder) negotiate() string {
	for _, c := range MIMECandidates {
		if r.device.Supports(c) {
			return c
		}
	}
	return ""
}

// collect drains the stream until it ends. If the stream dies on its own
// (device failure) the hardware is released right here rather than waiting
// for a Stop that may never come.
func (r *Recorder) collect(s *session) {
	for chunk := range s.stream.Chunks() {
		r.mu.Lock()
		s.chunks = append(s.chunks, chunk)
		r.mu.Unlock()
	}
	s.ended = time.Now()
	s.release()
	close(s.done)
}

// Stop finalizes the active session: it releases the hardware, waits for the
// collector to drain, and assembles the buffered chunks into a Clip. Calling
// Stop while not recording is a no-op returning (nil, nil).
func (r *Recorder) Stop() (*Clip, error) {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return nil, nil
	}
	s := r.cur
	r.mu.Unlock()

	s.release()
	<-s.done

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRecording {
		// A concurrent Stop already finalized this session.
		return nil, nil
	}
	r.state = StateStopped
	r.cur = nil

	if err := s.stream.Err(); err != nil {
		return nil, fmt.Errorf("recording session failed: %w", err)
	}

	var total int
	for _, c := range s.chunks {
		total += len(c)
	}
	data := make([]byte, 0, total)
	for _, c := range s.chunks {
		data = append(data, c...)
	}

	return &Clip{
		Data:     data,
		MIMEType: s.mimeType,
		Duration: s.ended.Sub(s.started),
	}, nil
}
