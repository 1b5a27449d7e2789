package models

import "time"

// MediaKind is the coarse media classification of a scanned file.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
	KindImage MediaKind = "image"
	KindOther MediaKind = "other"
)

// Kinds lists all media kinds in report order.
var Kinds = []MediaKind{KindVideo, KindAudio, KindImage, KindOther}

// FileRecord describes a single file discovered during a scan. Records are
// created by the walker and metadata extractor and are immutable afterwards.
type FileRecord struct {
	Root        string    `json:"root" db:"root"`
	Path        string    `json:"path" db:"path"`
	Name        string    `json:"name" db:"name"`
	Ext         string    `json:"ext" db:"ext"`
	Size        int64     `json:"size" db:"size"`
	ModTime     time.Time `json:"mod_time" db:"mod_time"`
	Kind        MediaKind `json:"kind" db:"kind"`
	Duration    float64   `json:"duration,omitempty" db:"duration"`
	HasDuration bool      `json:"has_duration" db:"has_duration"`
}
