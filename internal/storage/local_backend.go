package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type LocalBackend struct {
	basePath string
}

func NewLocalBackend(basePath string) (*LocalBackend, error) {
	if basePath == "" {
		basePath = "./files/storage"
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalBackend{basePath: basePath}, nil
}

func (b *LocalBackend) Store(ctx context.Context, path string, reader io.Reader) error {
	fullPath := filepath.Join(b.basePath, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	// Stream straight to disk; a short write removes the partial file so a
	// failed part never leaves a truncated original behind.
	if _, err := io.Copy(file, reader); err != nil {
		os.Remove(fullPath)
		return err
	}

	return nil
}

func (b *LocalBackend) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(b.basePath, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	return file, nil
}

func (b *LocalBackend) Delete(ctx context.Context, path string) error {
	err := os.Remove(filepath.Join(b.basePath, filepath.FromSlash(path)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *LocalBackend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(b.basePath, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
