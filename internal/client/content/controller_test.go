package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caminho-app/caminho/internal/client/capture"
	"github.com/caminho-app/caminho/internal/client/intake"
	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/client/upload"
	"github.com/caminho-app/caminho/internal/common"
	"github.com/caminho-app/caminho/internal/logging"
)

type fakeAPI struct {
	mu      sync.Mutex
	created []models.ContentFields
	updated []models.ContentItem
	err     error
}

func (f *fakeAPI) CreateContentItem(ctx context.Context, fields models.ContentFields) (*models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, fields)
	item := models.ContentItem{
		ID:       "new-id",
		Title:    fields.Title,
		Type:     fields.Type,
		ImageURL: fields.ImageURL,
		AudioURL: fields.AudioURL,
		Duration: fields.Duration,
	}
	return &item, nil
}

func (f *fakeAPI) UpdateContentItem(ctx context.Context, item models.ContentItem) (*models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.updated = append(f.updated, item)
	return &item, nil
}

type fakePipeline struct {
	mu      sync.Mutex
	calls   []string
	started chan string
	release chan struct{}
	err     error
}

func (f *fakePipeline) record(kind string) {
	f.mu.Lock()
	f.calls = append(f.calls, kind)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- kind
	}
	if f.release != nil {
		<-f.release
	}
}

func (f *fakePipeline) UploadImage(ctx context.Context, p upload.Payload, ownerID string, onProgress upload.ProgressFunc) (string, error) {
	f.record("image")
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/media/users/" + ownerID + "/image/obj", nil
}

func (f *fakePipeline) UploadAudio(ctx context.Context, p upload.Payload, ownerID string, onProgress upload.ProgressFunc) (string, error) {
	f.record("audio")
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.test/media/users/" + ownerID + "/audio/obj", nil
}

func testController(api *fakeAPI, p *fakePipeline) *Controller {
	return NewController(api, p, logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func stagedFile(t *testing.T, name string, dur time.Duration) *intake.Staged {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))
	return &intake.Staged{Name: name, Path: path, Size: 7, MIMEType: "audio/mpeg", Duration: dur}
}

func TestSourceSwitch_ClearsStagedArtifacts(t *testing.T) {
	c := testController(&fakeAPI{}, &fakePipeline{})
	c.NewDraft(models.ContentTypePodcast)

	c.StageImage(&intake.Staged{Name: "cover.png", Kind: intake.KindImage})
	c.SetImageURL("https://example.com/cover.png")

	// Switching back to uploaded-file without staging leaves nothing staged.
	c.ClearImage()
	d := c.Draft()
	require.Nil(t, d.Image)

	// Audio: file and recording displace each other.
	c.StageAudioFile(stagedFile(t, "a.mp3", 0))
	c.StageRecording(&capture.Clip{Data: []byte("rec")})
	_, isRecording := c.Draft().Audio.(AudioRecording)
	require.True(t, isRecording)

	c.StageAudioFile(stagedFile(t, "b.mp3", 0))
	_, isFile := c.Draft().Audio.(AudioFile)
	require.True(t, isFile)
}

func TestStageAudio_DerivesDuration(t *testing.T) {
	c := testController(&fakeAPI{}, &fakePipeline{})
	c.NewDraft(models.ContentTypePodcast)

	c.StageAudioFile(stagedFile(t, "ep.mp3", 185*time.Second))
	require.Equal(t, 185, c.Draft().Fields.Duration)

	c.StageRecording(&capture.Clip{Data: []byte("rec"), Duration: 12 * time.Second})
	require.Equal(t, 12, c.Draft().Fields.Duration)

	// Manual override stays editable.
	c.SetDuration(200)
	require.Equal(t, 200, c.Draft().Fields.Duration)
}

func TestSubmit_UploadsConcurrentlyThenPersists(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePipeline{started: make(chan string, 2), release: make(chan struct{})}
	c := testController(api, p)

	c.NewDraft(models.ContentTypePodcast)
	c.UpdateFields(func(f *models.ContentFields) { f.Title = "Episódio 1" })
	c.StageImage(stagedFile(t, "cover.png", 0))
	c.StageAudioFile(stagedFile(t, "ep.mp3", 90*time.Second))

	type result struct {
		item *models.ContentItem
		err  error
	}
	done := make(chan result, 1)
	go func() {
		item, err := c.Submit(context.Background(), "u1", nil, nil)
		done <- result{item, err}
	}()

	// Both uploads must be in flight before either is allowed to finish.
	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case kind := <-p.started:
			seen[kind] = true
		case <-time.After(2 * time.Second):
			t.Fatal("expected both uploads to start concurrently")
		}
	}
	require.True(t, seen["image"] && seen["audio"])

	// Nothing may be persisted while the uploads are still running.
	api.mu.Lock()
	require.Empty(t, api.created)
	api.mu.Unlock()

	close(p.release)
	res := <-done
	require.NoError(t, res.err)
	require.Len(t, api.created, 1)
	require.Equal(t, "https://cdn.test/media/users/u1/image/obj", api.created[0].ImageURL)
	require.Equal(t, "https://cdn.test/media/users/u1/audio/obj", api.created[0].AudioURL)
	require.Equal(t, 90, api.created[0].Duration)

	// Submit success destroys the draft.
	require.Equal(t, Draft{}, c.Draft())
}

func TestSubmit_ExternalURLsNeedNoUpload(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePipeline{}
	c := testController(api, p)

	c.NewDraft(models.ContentTypeDevocional)
	c.SetImageURL("https://example.com/i.png")
	c.SetAudioURL("https://example.com/a.mp3")

	_, err := c.Submit(context.Background(), "u1", nil, nil)
	require.NoError(t, err)
	require.Empty(t, p.calls, "plain URLs require no upload")
	require.Equal(t, "https://example.com/i.png", api.created[0].ImageURL)
	require.Equal(t, "https://example.com/a.mp3", api.created[0].AudioURL)
}

func TestSubmit_UnselectedRecordingIsNotUploaded(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePipeline{}
	c := testController(api, p)

	c.NewDraft(models.ContentTypePodcast)
	c.StageRecording(&capture.Clip{Data: []byte("twelve seconds"), Duration: 12 * time.Second})
	// The user changes their mind: the audio source becomes a plain URL.
	c.SetAudioURL("https://example.com/a.mp3")

	_, err := c.Submit(context.Background(), "u1", nil, nil)
	require.NoError(t, err)
	require.Empty(t, p.calls, "source selection gates which artifact is used")
	require.Equal(t, "https://example.com/a.mp3", api.created[0].AudioURL)
}

func TestSubmit_UploadFailureAbortsAndRetainsDraft(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePipeline{err: errors.New("storage down")}
	c := testController(api, p)

	c.NewDraft(models.ContentTypePodcast)
	c.UpdateFields(func(f *models.ContentFields) { f.Title = "Mantido" })
	c.StageAudioFile(stagedFile(t, "ep.mp3", 0))

	_, err := c.Submit(context.Background(), "u1", nil, nil)
	require.ErrorContains(t, err, "storage down")
	require.Empty(t, api.created, "no partial-success commit")

	// Draft retained for retry; controller back in editing state.
	require.Equal(t, "Mantido", c.Draft().Fields.Title)
	require.Equal(t, StateEditing, c.State())
}

func TestSubmit_AuthorizationFailureIsDistinguishable(t *testing.T) {
	api := &fakeAPI{err: common.ErrUnauthorized}
	c := testController(api, &fakePipeline{})

	c.NewDraft(models.ContentTypeEstudo)
	_, err := c.Submit(context.Background(), "u1", nil, nil)
	require.ErrorIs(t, err, common.ErrPersistenceFailed)
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestSubmit_Reentrant(t *testing.T) {
	api := &fakeAPI{}
	p := &fakePipeline{started: make(chan string, 1), release: make(chan struct{})}
	c := testController(api, p)

	c.NewDraft(models.ContentTypePodcast)
	c.StageAudioFile(stagedFile(t, "ep.mp3", 0))

	done := make(chan struct{})
	go func() {
		_, _ = c.Submit(context.Background(), "u1", nil, nil)
		close(done)
	}()
	<-p.started

	_, err := c.Submit(context.Background(), "u1", nil, nil)
	require.ErrorIs(t, err, ErrSubmitInProgress)

	close(p.release)
	<-done
}

func TestSubmit_UpdatesExistingItem(t *testing.T) {
	api := &fakeAPI{}
	c := testController(api, &fakePipeline{})

	c.EditDraft(models.ContentItem{
		ID:       "c42",
		Title:    "Antigo",
		Type:     models.ContentTypeMentoria,
		ImageURL: "https://example.com/old.png",
		AudioURL: "https://example.com/old.mp3",
	})
	c.UpdateFields(func(f *models.ContentFields) { f.Title = "Novo" })

	_, err := c.Submit(context.Background(), "u1", nil, nil)
	require.NoError(t, err)
	require.Len(t, api.updated, 1)
	require.Equal(t, "c42", api.updated[0].ID)
	require.Equal(t, "Novo", api.updated[0].Title)
	require.Equal(t, "https://example.com/old.png", api.updated[0].ImageURL)
	require.Empty(t, api.created)
}
