package intake

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// FFProbe reads a file's container metadata with the ffprobe binary.
// The full stream is never decoded.
type FFProbe struct {
	// Bin overrides the probe binary; defaults to "ffprobe" on PATH.
	Bin string
}

func (p FFProbe) Probe(ctx context.Context, path string) (time.Duration, error) {
	bin := p.Bin
	if bin == "" {
		bin = "ffprobe"
	}

	out, err := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparsable duration %q: %w", path, out, err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}
