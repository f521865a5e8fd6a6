package media

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"

	"github.com/filedash/filedash_server/internal/storage"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

type Endpoints struct {
	service *Service
	repo    Repository
	backend storage.Backend
}

func NewEndpoints(service *Service, repo Repository, backend storage.Backend) *Endpoints {
	return &Endpoints{
		service: service,
		repo:    repo,
		backend: backend,
	}
}

type uploadResponse struct {
	Message string `json:"message"`
}

// Upload handles POST /api/upload. Parts are consumed one at a time from
// the request body stream and piped straight to storage, so large files
// are never held in memory. Each part succeeds or fails on its own; a bad
// part does not abort the rest of the batch.
func (e *Endpoints) Upload(ctx *fasthttp.RequestCtx) {
	contentType := string(ctx.Request.Header.ContentType())
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		ctx.Error("Content-Type must be multipart/form-data", fasthttp.StatusBadRequest)
		return
	}

	boundary := params["boundary"]
	if boundary == "" {
		ctx.Error("Missing multipart boundary", fasthttp.StatusBadRequest)
		return
	}

	reader := multipart.NewReader(e.requestBody(ctx), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			ctx.Error("Failed to read multipart body", fasthttp.StatusBadRequest)
			return
		}

		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		if _, err := e.service.UploadPart(ctx, part.FileName(), part); err != nil {
			log.Error().Err(err).Str("filename", part.FileName()).Msg("Failed to process upload part")
		}
		part.Close()
	}

	body, _ := json.Marshal(uploadResponse{Message: "Files uploaded successfully!"})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}

func (e *Endpoints) requestBody(ctx *fasthttp.RequestCtx) io.Reader {
	if ctx.Request.IsBodyStream() {
		return ctx.RequestBodyStream()
	}
	return bytes.NewReader(ctx.PostBody())
}

// ListFiles handles GET /api/files, returning every record as a JSON array.
func (e *Endpoints) ListFiles(ctx *fasthttp.RequestCtx) {
	records, err := e.repo.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list media records")
		ctx.Error("Failed to list files", fasthttp.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []*MediaRecord{}
	}

	body, err := json.Marshal(records)
	if err != nil {
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(body)
}

// Download handles GET /api/download/:filename, forcing a download of the
// stored original.
func (e *Endpoints) Download(ctx *fasthttp.RequestCtx) {
	filename, ok := ctx.UserValue("filename").(string)
	if !ok || filename == "" {
		ctx.Error("Filename is required", fasthttp.StatusBadRequest)
		return
	}

	e.serveFromArea(ctx, storage.AreaUploads, filename, true)
}

// ServeOriginal serves /uploads/:name. Originals force a download; only
// the thumbnail areas are viewable inline.
func (e *Endpoints) ServeOriginal(ctx *fasthttp.RequestCtx) {
	e.serveNamed(ctx, storage.AreaUploads, true)
}

func (e *Endpoints) ServeThumbnail(ctx *fasthttp.RequestCtx) {
	e.serveNamed(ctx, storage.AreaThumbnails, false)
}

func (e *Endpoints) ServeVideoThumbnail(ctx *fasthttp.RequestCtx) {
	e.serveNamed(ctx, storage.AreaVideoThumbnails, false)
}

func (e *Endpoints) serveNamed(ctx *fasthttp.RequestCtx, area string, attachment bool) {
	name, ok := ctx.UserValue("filename").(string)
	if !ok || name == "" {
		ctx.Error("Not Found", fasthttp.StatusNotFound)
		return
	}
	e.serveFromArea(ctx, area, name, attachment)
}

func (e *Endpoints) serveFromArea(ctx *fasthttp.RequestCtx, area, name string, attachment bool) {
	// filepath.Base strips any traversal the client smuggled in.
	name = filepath.Base(name)

	reader, err := e.backend.Get(ctx, path.Join(area, name))
	if err != nil {
		ctx.Error("File not found", fasthttp.StatusNotFound)
		return
	}
	defer reader.Close()

	ctx.SetContentType(contentTypeForName(name))
	if attachment {
		ctx.Response.Header.Set("Content-Disposition", `attachment; filename="`+name+`"`)
	}

	if _, err := io.Copy(ctx, reader); err != nil {
		log.Error().Err(err).Str("filename", name).Msg("Failed to stream file")
	}
}

func contentTypeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
