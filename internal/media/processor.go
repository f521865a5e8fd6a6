package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/filedash/filedash_server/internal/storage"
	"github.com/rs/zerolog/log"
)

// Processor generates one preview file per classified upload: a JPEG
// thumbnail for images, a PNG frame from the temporal midpoint for videos.
type Processor struct {
	repo        Repository
	backend     storage.Backend
	broadcaster Broadcaster
	thumbSize   int
	jpegQuality int
	ffmpegPath  string
	ffprobePath string
}

func NewProcessor(repo Repository, backend storage.Backend, broadcaster Broadcaster, config Config) *Processor {
	config.applyDefaults()
	return &Processor{
		repo:        repo,
		backend:     backend,
		broadcaster: broadcaster,
		thumbSize:   config.ThumbnailSize,
		jpegQuality: config.JPEGQuality,
		ffmpegPath:  config.FFmpegPath,
		ffprobePath: config.FFprobePath,
	}
}

// Generate runs the derivative task for one record. It always resolves the
// record to completed or failed and broadcasts every transition; errors
// never propagate past this boundary. No retries: a failed record stays
// failed until an external actor re-triggers it.
func (p *Processor) Generate(ctx context.Context, rec *MediaRecord) {
	p.setStatus(rec.ID, StatusProcessing)

	var thumbnail string
	var err error

	switch rec.Kind {
	case KindImage:
		thumbnail, err = p.generateImageThumbnail(ctx, rec.Filename)
	case KindVideo:
		thumbnail, err = p.generateVideoThumbnail(ctx, rec.Filename)
	default:
		err = fmt.Errorf("no derivative generator for kind %q", rec.Kind)
	}

	if err != nil {
		log.Warn().
			Err(err).
			Str("fileId", rec.ID).
			Str("filename", rec.Filename).
			Msg("Derivative generation failed")
		p.markFailed(rec.ID)
		return
	}

	if err := p.repo.MarkCompleted(rec.ID, thumbnail, rec.Kind); err != nil {
		log.Error().Err(err).Str("fileId", rec.ID).Msg("Failed to mark record completed")
		p.markFailed(rec.ID)
		return
	}

	p.broadcaster.BroadcastFileStatus(&FileStatusEvent{
		ID:        rec.ID,
		Status:    StatusCompleted,
		Thumbnail: thumbnail,
		Type:      rec.Kind,
	})

	log.Info().
		Str("fileId", rec.ID).
		Str("thumbnail", thumbnail).
		Msg("Derivative generated")
}

func (p *Processor) setStatus(id string, status Status) {
	if err := p.repo.UpdateStatus(id, status); err != nil {
		log.Error().Err(err).Str("fileId", id).Str("status", string(status)).Msg("Failed to update record status")
	}
	p.broadcaster.BroadcastFileStatus(&FileStatusEvent{ID: id, Status: status})
}

func (p *Processor) markFailed(id string) {
	if err := p.repo.MarkFailed(id); err != nil {
		log.Error().Err(err).Str("fileId", id).Msg("Failed to mark record failed")
	}
	p.broadcaster.BroadcastFileStatus(&FileStatusEvent{ID: id, Status: StatusFailed})
}

// generateImageThumbnail decodes the stored original with EXIF orientation
// applied, center-crops it to a square thumbnail and stores it as JPEG.
func (p *Processor) generateImageThumbnail(ctx context.Context, filename string) (string, error) {
	reader, err := p.backend.Get(ctx, path.Join(storage.AreaUploads, filename))
	if err != nil {
		return "", fmt.Errorf("failed to read original: %w", err)
	}
	defer reader.Close()

	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fill(img, p.thumbSize, p.thumbSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(p.jpegQuality)); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	name := DerivativeName(filename, KindImage)
	if err := p.backend.Store(ctx, path.Join(storage.AreaThumbnails, name), &buf); err != nil {
		return "", fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return name, nil
}

// generateVideoThumbnail extracts a single frame at 50% of the clip's
// duration via ffmpeg and stores it as PNG. The original is spooled to a
// temp file first since ffmpeg needs a seekable path and the backend may
// be remote.
func (p *Processor) generateVideoThumbnail(ctx context.Context, filename string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "filedash-video-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	inputPath := filepath.Join(tmpDir, "input"+filepath.Ext(filename))
	if err := p.spoolOriginal(ctx, filename, inputPath); err != nil {
		return "", err
	}

	duration, err := p.probeDuration(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to probe video duration: %w", err)
	}

	name := DerivativeName(filename, KindVideo)
	outputPath := filepath.Join(tmpDir, "frame.png")

	midpoint := duration / 2
	cmd := exec.CommandContext(ctx, p.ffmpegPath,
		"-ss", strconv.FormatFloat(midpoint, 'f', 3, 64),
		"-i", inputPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", p.thumbSize, p.thumbSize),
		"-y", outputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg frame extraction failed: %w: %s", err, truncateOutput(out))
	}

	frame, err := os.Open(outputPath)
	if err != nil {
		return "", fmt.Errorf("ffmpeg produced no frame: %w", err)
	}
	defer frame.Close()

	if err := p.backend.Store(ctx, path.Join(storage.AreaVideoThumbnails, name), frame); err != nil {
		return "", fmt.Errorf("failed to store video thumbnail: %w", err)
	}

	return name, nil
}

func (p *Processor) spoolOriginal(ctx context.Context, filename, dst string) error {
	reader, err := p.backend.Get(ctx, path.Join(storage.AreaUploads, filename))
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}
	defer reader.Close()

	file, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to spool original: %w", err)
	}
	return nil
}

func (p *Processor) probeDuration(ctx context.Context, inputPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected ffprobe output %q: %w", strings.TrimSpace(string(out)), err)
	}
	return duration, nil
}

func truncateOutput(out []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(out))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
