package app

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/LachsProducktions/mediascan/models"
)

// FFProbe extracts media durations by invoking the ffprobe binary.
type FFProbe struct {
	Command string        // binary name or path, "" = "ffprobe"
	Timeout time.Duration // 0 = 15s, matching ffprobe's typical worst case
}

// NewFFProbe returns an ffprobe-backed DurationProbe, or nil when the binary
// is not present on PATH so callers can fall back to no probing at all.
func NewFFProbe(command string) models.DurationProbe {
	if command == "" {
		command = "ffprobe"
	}
	if _, err := exec.LookPath(command); err != nil {
		return nil
	}
	return &FFProbe{Command: command}
}

func (p *FFProbe) Probe(ctx context.Context, path string) (float64, bool) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Command,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

// ProbeFunc adapts a plain function to the DurationProbe interface.
type ProbeFunc func(ctx context.Context, path string) (float64, bool)

func (f ProbeFunc) Probe(ctx context.Context, path string) (float64, bool) {
	return f(ctx, path)
}
