package models

import "context"

// DurationProbe extracts a playback duration in seconds for a media file.
// Implementations are interchangeable; any failure is reported as ok=false
// and never aborts a scan.
type DurationProbe interface {
	Probe(ctx context.Context, path string) (seconds float64, ok bool)
}
