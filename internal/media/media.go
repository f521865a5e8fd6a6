package media

import (
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// MediaRecord tracks one uploaded file. The JSON field names mirror the
// document shape the dashboard frontend consumes.
type MediaRecord struct {
	ID        string `json:"_id"`
	Filename  string `json:"filename"`
	Owner     string `json:"user"`
	Kind      Kind   `json:"type,omitempty"`
	Status    Status `json:"status"`
	Thumbnail string `json:"thumbnail,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// FileStatusEvent is the payload pushed to observers on every status
// transition. Thumbnail and Type are only set on completion.
type FileStatusEvent struct {
	ID        string `json:"_id"`
	Status    Status `json:"status"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Type      Kind   `json:"type,omitempty"`
}

// Broadcaster pushes status events to all currently connected observers.
// Delivery is best-effort and never blocks the caller.
type Broadcaster interface {
	BroadcastFileStatus(ev *FileStatusEvent)
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
}

// ClassifyKind determines the media kind from the file extension,
// case-insensitive. Unrecognized extensions return the empty kind and
// receive no derivative.
func ClassifyKind(filename string) Kind {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return KindImage
	case videoExtensions[ext]:
		return KindVideo
	default:
		return ""
	}
}

// DerivativeName derives the preview file name from the original by
// replacing its extension with the preview format's extension: JPEG
// thumbnails for images, PNG frames for videos.
func DerivativeName(filename string, kind Kind) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if kind == KindVideo {
		return base + ".png"
	}
	return base + ".jpg"
}
