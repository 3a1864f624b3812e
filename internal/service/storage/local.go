package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/ChaseRain/lessonslides/pkg/errors"
)

// LocalBackend keeps one JSON file per session under dir.
type LocalBackend struct {
	dir string
}

func NewLocalBackend(dir string) *LocalBackend {
	return &LocalBackend{dir: dir}
}

func (b *LocalBackend) path(id string) string {
	return filepath.Join(b.dir, filepath.Base(id)+".json")
}

func (b *LocalBackend) Put(ctx context.Context, id string, data []byte) error {
	if err := os.MkdirAll(b.dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to create deck directory")
	}
	if err := os.WriteFile(b.path(id), data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to write deck")
	}
	return nil
}

func (b *LocalBackend) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(b.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeNotFound, "deck not found")
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "failed to read deck")
	}
	return data, nil
}

func (b *LocalBackend) Delete(ctx context.Context, id string) error {
	if err := os.Remove(b.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrCodeStorage, "failed to delete deck")
	}
	return nil
}

func (b *LocalBackend) Close() error { return nil }
