package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChaseRain/lessonslides/internal/infra/config"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

// Backend stores deck snapshots by session id.
type Backend interface {
	Put(ctx context.Context, id string, data []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Service persists deck snapshots through a Backend and writes exported
// bundles under basePath, where the server serves them from baseURL.
type Service struct {
	backend  Backend
	basePath string
	baseURL  string
	logger   *logger.Logger
}

func New(backend Backend, basePath, baseURL string, log *logger.Logger) *Service {
	return &Service{
		backend:  backend,
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   log.With("service", "storage"),
	}
}

// Open builds the backend selected by cfg.Type. Unknown types fall back to
// local files.
func Open(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*Service, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Type {
	case "redis":
		backend, err = NewRedisBackend(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.TTLSeconds)
	case "sqlite":
		backend, err = NewSQLiteBackend(cfg.SQLitePath)
	case "local", "":
		backend = NewLocalBackend(filepath.Join(cfg.BasePath, "decks"))
	default:
		log.Warn("unknown storage type, using local", "type", cfg.Type)
		backend = NewLocalBackend(filepath.Join(cfg.BasePath, "decks"))
	}
	if err != nil {
		return nil, err
	}
	return New(backend, cfg.BasePath, cfg.BaseURL, log), nil
}

func (s *Service) SaveDeck(ctx context.Context, id string, list []slides.NormalizedSlide) error {
	data, err := json.Marshal(list)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal deck")
	}
	if err := s.backend.Put(ctx, id, data); err != nil {
		return err
	}
	s.logger.Debug("deck saved", "session_id", id, "slides", len(list))
	return nil
}

// LoadDeck returns the saved snapshot, or NOT_FOUND.
func (s *Service) LoadDeck(ctx context.Context, id string) ([]slides.NormalizedSlide, error) {
	data, err := s.backend.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var list []slides.NormalizedSlide
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorage, "corrupt deck snapshot")
	}
	return list, nil
}

func (s *Service) DeleteDeck(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, id)
}

// SaveBundle writes an exported artifact and returns its public URL. The
// extension follows the content.
func (s *Service) SaveBundle(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to create output directory")
	}

	filename := key + detectExtension(data)
	filePath := filepath.Join(s.basePath, filename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorage, "failed to write file")
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, filename)
	s.logger.Info("saved bundle", "path", filePath, "url", url, "size", len(data))
	return url, nil
}

func (s *Service) Close() error {
	return s.backend.Close()
}

func detectExtension(data []byte) string {
	if len(data) < 4 {
		return ".bin"
	}
	switch {
	case data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return ".png"
	case data[0] == 'P' && data[1] == 'K':
		return ".zip"
	case data[0] == '{' || data[0] == '[':
		return ".json"
	}
	return ".bin"
}
