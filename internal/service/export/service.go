package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/ChaseRain/lessonslides/pkg/util"
)

const ManifestName = "deck.json"

// BundleStore is where finished bundles go.
type BundleStore interface {
	SaveBundle(ctx context.Context, key string, data []byte) (string, error)
}

type Service struct {
	renderer *render.ImageRenderer
	store    BundleStore
	logger   *logger.Logger
}

func New(renderer *render.ImageRenderer, store BundleStore, log *logger.Logger) *Service {
	return &Service{
		renderer: renderer,
		store:    store,
		logger:   log.With("service", "export"),
	}
}

// SlideFileName is the PNG name of the slide at index inside a bundle.
func SlideFileName(index int) string {
	return fmt.Sprintf("slide-%02d.png", index+1)
}

// Bundle packs the deck as a ZIP: the deck.json snapshot followed by one
// full-size PNG per slide, in deck order.
func (s *Service) Bundle(ctx context.Context, list []slides.NormalizedSlide) ([]byte, error) {
	if len(list) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidReq, "deck is empty")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal deck")
	}
	if err := writeEntry(zw, ManifestName, manifest); err != nil {
		return nil, err
	}

	for i, sl := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := s.renderer.PNG(sl.Canvas, sl.Image, render.Options{Scale: 1})
		if err != nil {
			return nil, err
		}
		if err := writeEntry(zw, SlideFileName(i), img); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "failed to finish bundle")
	}
	return buf.Bytes(), nil
}

// Export bundles the deck and stores it, returning the bundle's URL.
func (s *Service) Export(ctx context.Context, sessionID string, list []slides.NormalizedSlide) (string, error) {
	data, err := s.Bundle(ctx, list)
	if err != nil {
		s.logger.Error("failed to bundle deck", "session_id", sessionID, "error", err)
		return "", err
	}

	url, err := s.store.SaveBundle(ctx, util.ExportKey(sessionID), data)
	if err != nil {
		s.logger.Error("failed to save bundle", "session_id", sessionID, "error", err)
		return "", err
	}

	s.logger.Info("deck exported", "session_id", sessionID, "slides", len(list), "size_bytes", len(data), "url", url)
	return url, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeRender, "failed to add "+name)
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrCodeRender, "failed to write "+name)
	}
	return nil
}
