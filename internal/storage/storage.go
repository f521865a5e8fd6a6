package storage

import (
	"context"
	"io"
)

// The three read-only areas the service exposes: originals, image
// thumbnails and video thumbnails. Backend paths are "<area>/<name>".
const (
	AreaUploads         = "uploads"
	AreaThumbnails      = "thumbnails"
	AreaVideoThumbnails = "video-thumbnails"
)

// Backend is the durable byte store for originals and derivatives.
// Store must consume the reader incrementally; callers rely on it to
// propagate backpressure rather than buffer whole files.
type Backend interface {
	Store(ctx context.Context, path string, reader io.Reader) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

type BackendType string

const (
	BackendTypeLocal BackendType = "local"
	BackendTypeS3    BackendType = "s3"
)

type BackendConfig struct {
	Type        BackendType `mapstructure:"type"`
	LocalPath   string      `mapstructure:"local_path"`
	S3Endpoint  string      `mapstructure:"s3_endpoint"`
	S3Bucket    string      `mapstructure:"s3_bucket"`
	S3AccessKey string      `mapstructure:"s3_access_key"`
	S3SecretKey string      `mapstructure:"s3_secret_key"`
	S3Region    string      `mapstructure:"s3_region"`
	S3UseSSL    bool        `mapstructure:"s3_use_ssl"`
}

func NewBackend(config *BackendConfig) (Backend, error) {
	switch config.Type {
	case BackendTypeS3:
		return NewS3Backend(config)
	default:
		return NewLocalBackend(config.LocalPath)
	}
}
