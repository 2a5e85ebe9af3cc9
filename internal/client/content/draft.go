package content

import (
	"github.com/caminho-app/caminho/internal/client/capture"
	"github.com/caminho-app/caminho/internal/client/intake"
	"github.com/caminho-app/caminho/internal/client/models"
)

// ImageSource is the staged origin of a draft's image: exactly one variant
// at a time. Replacing the source discards whatever was staged before, so a
// stale payload can never ride along on submit.
type ImageSource interface{ isImageSource() }

// ImageURL uses an externally hosted image verbatim; nothing is uploaded.
type ImageURL struct{ URL string }

// ImageFile uploads a staged local file on submit.
type ImageFile struct{ File *intake.Staged }

func (ImageURL) isImageSource()  {}
func (ImageFile) isImageSource() {}

// AudioSource is the staged origin of a draft's audio. The file and
// recording variants are mutually exclusive by construction.
type AudioSource interface{ isAudioSource() }

// AudioURL uses an externally hosted audio file verbatim.
type AudioURL struct{ URL string }

// AudioFile uploads a staged local file on submit.
type AudioFile struct{ File *intake.Staged }

// AudioRecording uploads a just-finished in-memory recording on submit.
type AudioRecording struct{ Clip *capture.Clip }

func (AudioURL) isAudioSource()       {}
func (AudioFile) isAudioSource()      {}
func (AudioRecording) isAudioSource() {}

// Draft is the in-memory, not-yet-persisted representation of a content item
// being authored or edited. It lives for one edit session: created empty or
// hydrated from a persisted item, destroyed on submit success or cancel.
type Draft struct {
	// ID is empty for new content and set when editing an existing item.
	ID     string
	Fields models.ContentFields

	Image ImageSource
	Audio AudioSource
}
