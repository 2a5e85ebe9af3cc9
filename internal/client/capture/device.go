package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/caminho-app/caminho/internal/common"
)

// Stream delivers encoded audio chunks from an open input device.
//
// Chunks is closed when the stream ends, whether by Close or by a device
// failure; Err reports the failure afterwards. Close releases the hardware
// and is safe to call more than once.
type Stream interface {
	Chunks() <-chan []byte
	Err() error
	Close() error
}

// Device abstracts the platform microphone.
type Device interface {
	// Supports reports whether the device can encode into the given MIME type.
	Supports(mimeType string) bool
	// Open acquires the hardware and starts encoding into mimeType.
	// An empty mimeType selects the device's default container.
	Open(ctx context.Context, mimeType string) (Stream, error)
}

// CommandDevice captures microphone audio by running an external encoder
// (ffmpeg-style) and streaming its stdout.
type CommandDevice struct {
	// Bin is the encoder binary, e.g. "ffmpeg".
	Bin string
	// Formats maps a MIME type to the argument list producing it.
	Formats map[string][]string
	// DefaultArgs is used when Open is called with an empty MIME type.
	DefaultArgs []string
}

// NewFFmpegDevice returns a CommandDevice reading the default system
// microphone through ffmpeg.
func NewFFmpegDevice() *CommandDevice {
	in := []string{"-hide_banner", "-loglevel", "error", "-f", "pulse", "-i", "default"}
	return &CommandDevice{
		Bin: "ffmpeg",
		Formats: map[string][]string{
			"audio/webm;codecs=opus": append(append([]string{}, in...), "-c:a", "libopus", "-f", "webm", "-"),
			"audio/mp4":              append(append([]string{}, in...), "-c:a", "aac", "-f", "mp4", "-movflags", "frag_keyframe+empty_moov", "-"),
			"audio/ogg":              append(append([]string{}, in...), "-c:a", "libvorbis", "-f", "ogg", "-"),
		},
		DefaultArgs: append(append([]string{}, in...), "-f", "wav", "-"),
	}
}

func (d *CommandDevice) Supports(mimeType string) bool {
	_, ok := d.Formats[mimeType]
	return ok
}

func (d *CommandDevice) Open(ctx context.Context, mimeType string) (Stream, error) {
	args := d.DefaultArgs
	if mimeType != "" {
		a, ok := d.Formats[mimeType]
		if !ok {
			return nil, fmt.Errorf("unsupported capture format %q", mimeType)
		}
		args = a
	}

	cmd := exec.CommandContext(ctx, d.Bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("capture pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, mapDeviceError(err)
	}

	s := &commandStream{
		cmd:    cmd,
		stdout: stdout,
		ch:     make(chan []byte, 16),
	}
	go s.pump()
	return s, nil
}

func mapDeviceError(err error) error {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: %v", common.ErrDeviceUnavailable, err)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", common.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("opening capture device: %w", err)
	}
}

type commandStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	ch     chan []byte

	closeOnce sync.Once
	closeErr  error

	mu  sync.Mutex
	err error
}

func (s *commandStream) Chunks() <-chan []byte { return s.ch }

func (s *commandStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *commandStream) pump() {
	r := bufio.NewReader(s.stdout)
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.ch <- chunk
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			close(s.ch)
			return
		}
	}
}

// Close terminates the encoder process and waits for it to exit. The stop
// signal lets the encoder flush its container trailer before exiting.
func (s *commandStream) Close() error {
	s.closeOnce.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Signal(os.Interrupt)
		}
		s.closeErr = s.cmd.Wait()
	})
	return s.closeErr
}
