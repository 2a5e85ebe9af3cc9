// Package intake validates and stages user-selected files before upload.
//
// Staging is purely local: the size ceiling is enforced and, for audio, a
// best-effort duration probe runs, but no bytes leave the machine here.
package intake

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/caminho-app/caminho/internal/common"
	"github.com/caminho-app/caminho/internal/logging"
)

// Kind selects the validation profile for a staged file.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Staged describes a file that passed intake and is ready for upload.
//
// Duration is advisory: zero when probing failed or was not applicable, in
// which case the caller keeps whatever duration it already had.
type Staged struct {
	Name     string
	Path     string
	Size     int64
	MIMEType string
	Kind     Kind
	Duration time.Duration
}

// DurationProber extracts the playable duration of an audio file by reading
// metadata only, never decoding the full stream.
type DurationProber interface {
	Probe(ctx context.Context, path string) (time.Duration, error)
}

type Intake struct {
	maxBytes int64
	prober   DurationProber
	log      logging.Logger
}

func New(prober DurationProber, log logging.Logger) *Intake {
	return &Intake{maxBytes: common.MaxUploadBytes, prober: prober, log: log}
}

// Accept stats the file at path, rejects it when it exceeds the size ceiling,
// and stages it with a best-effort duration for audio. Rejection happens
// before any probing so an oversized file costs nothing.
func (i *Intake) Accept(ctx context.Context, path string, kind Kind) (*Staged, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if fi.Size() > i.maxBytes {
		return nil, fmt.Errorf("%s (%d bytes): %w", fi.Name(), fi.Size(), common.ErrFileTooLarge)
	}

	s := &Staged{
		Name:     fi.Name(),
		Path:     path,
		Size:     fi.Size(),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Kind:     kind,
	}

	if kind == KindAudio && i.prober != nil {
		d, err := i.prober.Probe(ctx, path)
		if err != nil {
			// Advisory only: a failed probe never fails the intake.
			i.log.Warn(ctx, "duration probe failed", "file", fi.Name(), "error", err)
		} else {
			s.Duration = d
		}
	}

	return s, nil
}
