package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/LachsProducktions/mediascan/models"
)

var videoExts = extSet(
	".mp4", ".mkv", ".avi", ".mov", ".flv", ".wmv", ".webm", ".ts", ".m2ts",
	".vob", ".mpeg", ".mpg", ".ogv", ".3gp", ".f4v", ".mxf", ".hevc", ".h264", ".h265",
)

var audioExts = extSet(
	".mp3", ".wav", ".flac", ".aac", ".m4a", ".ogg", ".opus", ".wma", ".aiff",
	".alac", ".mid", ".midi", ".amr", ".ape", ".ra", ".rm",
)

var imageExts = extSet(
	".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tiff", ".tif", ".heic", ".webp",
	".raw", ".cr2", ".nef", ".orf", ".arw", ".dng", ".psd", ".svg",
)

func extSet(exts ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		m[e] = struct{}{}
	}
	return m
}

// KindForExt classifies a lowercase extension into a media kind.
func KindForExt(ext string) models.MediaKind {
	switch {
	case contains(videoExts, ext):
		return models.KindVideo
	case contains(audioExts, ext):
		return models.KindAudio
	case contains(imageExts, ext):
		return models.KindImage
	}
	return models.KindOther
}

func contains(set map[string]struct{}, ext string) bool {
	_, ok := set[ext]
	return ok
}

// extractor turns walker candidates into FileRecords. Classification is by
// extension first with a content sniff fallback; duration extraction is
// delegated to the injected probe and is best-effort only.
type extractor struct {
	probe  models.DurationProbe
	logger *ScanLogger
}

func (e *extractor) extract(ctx context.Context, c candidate) (models.FileRecord, error) {
	ext := strings.ToLower(filepath.Ext(c.Info.Name()))
	kind := KindForExt(ext)
	if kind == models.KindOther {
		sniffed, ok, err := e.sniffKind(c.Path)
		if err != nil {
			// File vanished or became unreadable between walk and extract.
			return models.FileRecord{}, err
		}
		if ok {
			kind = sniffed
		}
	}

	rec := models.FileRecord{
		Root:    c.Root,
		Path:    c.Path,
		Name:    filepath.Base(c.Path),
		Ext:     ext,
		Size:    c.Info.Size(),
		ModTime: c.Info.ModTime(),
		Kind:    kind,
	}

	if kind == models.KindVideo || kind == models.KindAudio {
		if e.probe != nil {
			if d, ok := e.probe.Probe(ctx, c.Path); ok {
				rec.Duration = d
				rec.HasDuration = true
			}
		}
	}

	return rec, nil
}

// sniffKind inspects the leading bytes of a file whose extension is unknown.
func (e *extractor) sniffKind(path string) (models.MediaKind, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.KindOther, false, err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	if n == 0 {
		return models.KindOther, false, nil
	}

	mime := http.DetectContentType(buf[:n])
	switch {
	case strings.HasPrefix(mime, "video/"):
		return models.KindVideo, true, nil
	case strings.HasPrefix(mime, "audio/"):
		return models.KindAudio, true, nil
	case strings.HasPrefix(mime, "image/"):
		return models.KindImage, true, nil
	}
	return models.KindOther, false, nil
}
