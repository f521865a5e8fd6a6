package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filedash/filedash_server/internal/storage"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func newTestEndpoints(t *testing.T) (*Endpoints, *MemoryRepository, storage.Backend) {
	t.Helper()

	service, repo, _, dir := newTestPipeline(t)
	backend, err := storage.NewLocalBackend(dir)
	assert.NoError(t, err)

	return NewEndpoints(service, repo, backend), repo, backend
}

func multipartBody(t *testing.T, files map[string][]byte) ([]byte, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := writer.CreateFormFile("file", name)
		assert.NoError(t, err)
		_, err = part.Write(content)
		assert.NoError(t, err)
	}
	assert.NoError(t, writer.Close())

	return buf.Bytes(), writer.FormDataContentType()
}

func TestEndpoints_Upload_ShouldCreateOneRecordPerFilePart(t *testing.T) {
	// given
	endpoints, repo, _ := newTestEndpoints(t)

	body, contentType := multipartBody(t, map[string][]byte{
		"notes.txt": []byte("plain text"),
		"other.bin": []byte{0x01, 0x02},
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.Header.SetContentType(contentType)
	ctx.Request.SetBody(body)

	// when
	endpoints.Upload(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var response uploadResponse
	assert.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, "Files uploaded successfully!", response.Message)

	records, err := repo.List()
	assert.NoError(t, err)
	assert.Len(t, records, 2)
}

// rejectingBackend refuses writes for one file name and delegates the rest.
type rejectingBackend struct {
	storage.Backend
	rejectName string
}

func (b *rejectingBackend) Store(ctx context.Context, path string, reader io.Reader) error {
	if filepath.Base(path) == b.rejectName {
		return fmt.Errorf("no space left on device")
	}
	return b.Backend.Store(ctx, path, reader)
}

func TestEndpoints_Upload_FailedPartShouldNotAbortRemainingParts(t *testing.T) {
	// given - storage refuses one of the two files in the batch
	dir := t.TempDir()
	local, err := storage.NewLocalBackend(dir)
	assert.NoError(t, err)
	backend := &rejectingBackend{Backend: local, rejectName: "broken.txt"}

	repo := NewMemoryRepository()
	broadcaster := &fakeBroadcaster{}
	config := Config{}
	processor := NewProcessor(repo, backend, broadcaster, config)
	service := NewService(repo, backend, broadcaster, processor, config)
	endpoints := NewEndpoints(service, repo, backend)

	body, contentType := multipartBody(t, map[string][]byte{
		"broken.txt": []byte("never stored"),
		"notes.txt":  []byte("survives"),
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.Header.SetContentType(contentType)
	ctx.Request.SetBody(body)

	// when
	endpoints.Upload(ctx)

	// then - the batch still succeeds and only the good part has a record
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	records, err := repo.List()
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "notes.txt", records[0].Filename)

	stored, err := os.ReadFile(filepath.Join(dir, "uploads", "notes.txt"))
	assert.NoError(t, err)
	assert.Equal(t, "survives", string(stored))

	_, statErr := os.Stat(filepath.Join(dir, "uploads", "broken.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEndpoints_Upload_ShouldRejectNonMultipartRequests(t *testing.T) {
	// given
	endpoints, _, _ := newTestEndpoints(t)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.Header.SetContentType("application/json")
	ctx.Request.SetBodyString(`{}`)

	// when
	endpoints.Upload(ctx)

	// then
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestEndpoints_Upload_ShouldIgnorePartsUnderOtherFieldNames(t *testing.T) {
	// given
	endpoints, repo, _ := newTestEndpoints(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	assert.NoError(t, writer.WriteField("comment", "not a file"))
	part, err := writer.CreateFormFile("attachment", "wrong-field.txt")
	assert.NoError(t, err)
	_, err = part.Write([]byte("ignored"))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.Header.SetContentType(writer.FormDataContentType())
	ctx.Request.SetBody(buf.Bytes())

	// when
	endpoints.Upload(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	records, err := repo.List()
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestEndpoints_ListFiles_ShouldReturnEmptyArrayWithoutUploads(t *testing.T) {
	// given
	endpoints, _, _ := newTestEndpoints(t)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")

	// when
	endpoints.ListFiles(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "[]", strings.TrimSpace(string(ctx.Response.Body())))
}

func TestEndpoints_Download_ShouldForceAttachment(t *testing.T) {
	// given
	endpoints, _, backend := newTestEndpoints(t)
	assert.NoError(t, backend.Store(context.Background(), "uploads/report.txt", strings.NewReader("contents")))

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")
	ctx.SetUserValue("filename", "report.txt")

	// when
	endpoints.Download(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, `attachment; filename="report.txt"`, string(ctx.Response.Header.Peek("Content-Disposition")))
	assert.Equal(t, "contents", string(ctx.Response.Body()))
}

func TestEndpoints_Download_ShouldReturnNotFoundForMissingFile(t *testing.T) {
	// given
	endpoints, _, _ := newTestEndpoints(t)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")
	ctx.SetUserValue("filename", "ghost.txt")

	// when
	endpoints.Download(ctx)

	// then
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestEndpoints_ServeThumbnail_ShouldServeInline(t *testing.T) {
	// given
	endpoints, _, backend := newTestEndpoints(t)
	assert.NoError(t, backend.Store(context.Background(), "thumbnails/cat.jpg", bytes.NewReader([]byte{0xFF, 0xD8})))

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("GET")
	ctx.SetUserValue("filename", "cat.jpg")

	// when
	endpoints.ServeThumbnail(ctx)

	// then
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "image/jpeg", string(ctx.Response.Header.ContentType()))
	assert.Empty(t, string(ctx.Response.Header.Peek("Content-Disposition")))
}
