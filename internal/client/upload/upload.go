// Package upload transfers staged payloads to object storage and resolves
// them into durable public URLs.
package upload

import (
	"context"
	"io"
)

// Payload is a read-only borrow of the bytes being transferred. Body must be
// seekable so a retried attempt can restart from the beginning.
type Payload struct {
	Body        io.ReadSeeker
	Size        int64
	ContentType string
}

// ProgressFunc receives a monotonically non-decreasing percentage 0–100.
// It is always called with 100 before a successful upload returns.
type ProgressFunc func(pct int)

// Pipeline uploads a payload under a destination namespaced by ownerID and
// resolves the durable URL of the stored object.
type Pipeline interface {
	UploadImage(ctx context.Context, p Payload, ownerID string, onProgress ProgressFunc) (string, error)
	UploadAudio(ctx context.Context, p Payload, ownerID string, onProgress ProgressFunc) (string, error)
}

// progressTracker enforces monotonic progress across read callbacks and
// retried attempts.
type progressTracker struct {
	fn   ProgressFunc
	last int
}

func (t *progressTracker) emit(pct int) {
	if t.fn == nil {
		return
	}
	if pct > 100 {
		pct = 100
	}
	if pct <= t.last {
		return
	}
	t.last = pct
	t.fn(pct)
}

// progressReader reports transfer progress while the storage client drains
// the payload body.
type progressReader struct {
	r       io.Reader
	total   int64
	read    int64
	tracker *progressTracker
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		// 100 is reserved for the moment the backend confirms the object.
		if pct > 99 {
			pct = 99
		}
		p.tracker.emit(pct)
	}
	return n, err
}
