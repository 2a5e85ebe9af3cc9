// Package content orchestrates the authoring workflow: a mutable draft, its
// staged media artifacts, and the submit path that resolves them into
// durable URLs before persisting the record.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/caminho-app/caminho/internal/client/capture"
	"github.com/caminho-app/caminho/internal/client/intake"
	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/client/upload"
	"github.com/caminho-app/caminho/internal/common"
	"github.com/caminho-app/caminho/internal/logging"
)

// ContentAPI is the persistence slice of the backend client the controller
// needs.
type ContentAPI interface {
	CreateContentItem(ctx context.Context, fields models.ContentFields) (*models.ContentItem, error)
	UpdateContentItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error)
}

type State int

const (
	StateEditing State = iota
	StateSubmitting
)

var ErrSubmitInProgress = errors.New("a submission is already in progress")

// Controller owns one draft per edit session and drives submit.
type Controller struct {
	api      ContentAPI
	pipeline upload.Pipeline
	log      logging.Logger

	mu    sync.Mutex
	state State
	draft Draft
}

func NewController(api ContentAPI, pipeline upload.Pipeline, log logging.Logger) *Controller {
	return &Controller{api: api, pipeline: pipeline, log: log}
}

// NewDraft starts an empty draft for new content.
func (c *Controller) NewDraft(typ models.ContentType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{Fields: models.ContentFields{Type: typ}}
	c.state = StateEditing
}

// EditDraft hydrates the draft from a persisted item. Both media sources
// start as plain URLs; the user stages new artifacts only when replacing.
func (c *Controller) EditDraft(item models.ContentItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{
		ID: item.ID,
		Fields: models.ContentFields{
			Title:               item.Title,
			Subtitle:            item.Subtitle,
			Description:         item.Description,
			Type:                item.Type,
			ImageURL:            item.ImageURL,
			AudioURL:            item.AudioURL,
			Duration:            item.Duration,
			ActionURL:           item.ActionURL,
			DownloadResourceURL: item.DownloadResourceURL,
			ContentBody:         item.ContentBody,
		},
		Image: ImageURL{URL: item.ImageURL},
		Audio: AudioURL{URL: item.AudioURL},
	}
	c.state = StateEditing
}

// Cancel discards the draft and any staged artifacts.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
	c.state = StateEditing
}

// Draft returns a snapshot of the current draft for display.
func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// UpdateFields applies edits to the draft's scalar fields.
func (c *Controller) UpdateFields(fn func(*models.ContentFields)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.draft.Fields)
}

// SetImageURL selects an external image URL, dropping any staged file.
func (c *Controller) SetImageURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Image = ImageURL{URL: url}
}

// StageImage selects an uploaded-file image source.
func (c *Controller) StageImage(f *intake.Staged) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Image = ImageFile{File: f}
}

// ClearImage deselects the image source entirely. Switching back to
// uploaded-file later requires staging a file again.
func (c *Controller) ClearImage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Image = nil
}

// SetAudioURL selects an external audio URL, dropping any staged file or
// recording.
func (c *Controller) SetAudioURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Audio = AudioURL{URL: url}
}

// StageAudioFile selects an uploaded-file audio source. Any previous
// recording is discarded, and the probed duration (when available) becomes
// the draft's duration.
func (c *Controller) StageAudioFile(f *intake.Staged) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Audio = AudioFile{File: f}
	if f.Duration > 0 {
		c.draft.Fields.Duration = int(f.Duration.Seconds())
	}
}

// StageRecording selects a just-finished recording as the audio source.
// Any previously staged file is discarded.
func (c *Controller) StageRecording(clip *capture.Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Audio = AudioRecording{Clip: clip}
	if clip.Duration > 0 {
		c.draft.Fields.Duration = int(clip.Duration.Seconds())
	}
}

// ClearAudio deselects the audio source entirely.
func (c *Controller) ClearAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Audio = nil
}

// SetDuration is the manual override for the derived duration.
func (c *Controller) SetDuration(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Fields.Duration = seconds
}

// Submit resolves both media sources into durable URLs (uploading staged
// artifacts concurrently), then persists the record. On any failure the
// draft is retained so the user can retry without re-entering fields; on
// success the draft is destroyed.
func (c *Controller) Submit(ctx context.Context, ownerID string, onImageProgress, onAudioProgress upload.ProgressFunc) (*models.ContentItem, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	c.state = StateSubmitting
	draft := c.draft
	c.mu.Unlock()

	item, err := c.submit(ctx, draft, ownerID, onImageProgress, onAudioProgress)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateEditing
	if err != nil {
		return nil, err
	}
	c.draft = Draft{}
	return item, nil
}

func (c *Controller) submit(ctx context.Context, draft Draft, ownerID string, onImageProgress, onAudioProgress upload.ProgressFunc) (*models.ContentItem, error) {
	var imageURL, audioURL string

	g, gctx := errgroup.WithContext(ctx)

	switch src := draft.Image.(type) {
	case ImageURL:
		imageURL = src.URL
	case ImageFile:
		g.Go(func() error {
			url, err := c.uploadFile(gctx, src.File, ownerID, intake.KindImage, onImageProgress)
			if err != nil {
				return err
			}
			imageURL = url
			return nil
		})
	}

	switch src := draft.Audio.(type) {
	case AudioURL:
		audioURL = src.URL
	case AudioFile:
		g.Go(func() error {
			url, err := c.uploadFile(gctx, src.File, ownerID, intake.KindAudio, onAudioProgress)
			if err != nil {
				return err
			}
			audioURL = url
			return nil
		})
	case AudioRecording:
		g.Go(func() error {
			payload := upload.Payload{
				Body:        bytes.NewReader(src.Clip.Data),
				Size:        int64(len(src.Clip.Data)),
				ContentType: src.Clip.MIMEType,
			}
			url, err := c.pipeline.UploadAudio(gctx, payload, ownerID, onAudioProgress)
			if err != nil {
				return err
			}
			audioURL = url
			return nil
		})
	}

	// Persistence is strictly ordered after both resolutions; a failed
	// upload aborts the whole submission rather than committing a record
	// with a missing media URL.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fields := draft.Fields
	fields.ImageURL = imageURL
	fields.AudioURL = audioURL

	var item *models.ContentItem
	var err error
	if draft.ID == "" {
		item, err = c.api.CreateContentItem(ctx, fields)
	} else {
		item, err = c.api.UpdateContentItem(ctx, models.ContentItem{
			ID:                  draft.ID,
			Title:               fields.Title,
			Subtitle:            fields.Subtitle,
			Description:         fields.Description,
			Type:                fields.Type,
			ImageURL:            fields.ImageURL,
			AudioURL:            fields.AudioURL,
			Duration:            fields.Duration,
			ActionURL:           fields.ActionURL,
			DownloadResourceURL: fields.DownloadResourceURL,
			ContentBody:         fields.ContentBody,
		})
	}
	if err != nil {
		// Keep authorization failures distinguishable so the UI can tell
		// the user whether to retry or call an administrator.
		return nil, fmt.Errorf("%w: %w", common.ErrPersistenceFailed, err)
	}

	c.log.Info(ctx, "content item persisted", "id", item.ID, "type", string(item.Type))
	return item, nil
}

func (c *Controller) uploadFile(ctx context.Context, f *intake.Staged, ownerID string, kind intake.Kind, onProgress upload.ProgressFunc) (string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return "", fmt.Errorf("opening staged file %s: %w", f.Name, err)
	}
	defer file.Close()

	payload := upload.Payload{Body: file, Size: f.Size, ContentType: f.MIMEType}
	if kind == intake.KindImage {
		return c.pipeline.UploadImage(ctx, payload, ownerID, onProgress)
	}
	return c.pipeline.UploadAudio(ctx, payload, ownerID, onProgress)
}
