package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/filedash/filedash_server/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Config covers the processing knobs of the pipeline. Owner is the
// placeholder identity assigned to every upload while the demo auth flow
// issues no tokens that could carry a real one.
type Config struct {
	Owner          string `mapstructure:"owner"`
	ThumbnailSize  int    `mapstructure:"thumbnail_size"`
	JPEGQuality    int    `mapstructure:"jpeg_quality"`
	FFmpegPath     string `mapstructure:"ffmpeg_path"`
	FFprobePath    string `mapstructure:"ffprobe_path"`
	TaskTimeoutSec int    `mapstructure:"task_timeout_sec"`
}

func (c *Config) applyDefaults() {
	if c.Owner == "" {
		c.Owner = "user1"
	}
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = 128
	}
	if c.JPEGQuality <= 0 {
		c.JPEGQuality = 80
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.TaskTimeoutSec <= 0 {
		c.TaskTimeoutSec = 120
	}
}

// Service is the upload pipeline: it streams incoming files to durable
// storage, creates their tracking records and dispatches derivative
// generation without waiting for it.
type Service struct {
	repo        Repository
	backend     storage.Backend
	broadcaster Broadcaster
	processor   *Processor
	owner       string
	taskTimeout time.Duration
}

func NewService(repo Repository, backend storage.Backend, broadcaster Broadcaster, processor *Processor, config Config) *Service {
	config.applyDefaults()
	return &Service{
		repo:        repo,
		backend:     backend,
		broadcaster: broadcaster,
		processor:   processor,
		owner:       config.Owner,
		taskTimeout: time.Duration(config.TaskTimeoutSec) * time.Second,
	}
}

// UploadPart stores a single file part and creates its record. Classified
// parts are persisted as processing, since storage has already succeeded
// and generator dispatch is immediate; unclassified parts stay pending
// forever. The persisted status always equals the broadcast status.
func (s *Service) UploadPart(ctx context.Context, filename string, data io.Reader) (*MediaRecord, error) {
	name := filepath.Base(filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("invalid file name: %q", filename)
	}

	storagePath := path.Join(storage.AreaUploads, name)
	if err := s.backend.Store(ctx, storagePath, data); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	kind := ClassifyKind(name)
	status := StatusPending
	if kind != "" {
		status = StatusProcessing
	}

	rec := &MediaRecord{
		ID:        uuid.NewString(),
		Filename:  name,
		Owner:     s.owner,
		Kind:      kind,
		Status:    status,
		CreatedAt: time.Now().Unix(),
	}

	if err := s.repo.Create(rec); err != nil {
		s.backend.Delete(ctx, storagePath)
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	s.broadcaster.BroadcastFileStatus(&FileStatusEvent{ID: rec.ID, Status: rec.Status})

	if kind != "" {
		s.dispatch(rec)
	}

	log.Info().
		Str("fileId", rec.ID).
		Str("filename", rec.Filename).
		Str("kind", string(rec.Kind)).
		Msg("File uploaded")

	return rec, nil
}

// dispatch starts exactly one generator task for the record. The task
// carries its own deadline so a hung decode or probe cannot block forever.
func (s *Service) dispatch(rec *MediaRecord) {
	generate := *rec
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.taskTimeout)
		defer cancel()
		s.processor.Generate(ctx, &generate)
	}()
}
