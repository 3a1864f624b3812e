package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ChaseRain/lessonslides/internal/infra/httpclient"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/internal/stream"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

// Service talks to the external slide-generation API.
type Service struct {
	baseURL        string
	streamingURL   string
	questionPrefix string
	httpClient     *httpclient.Client
	logger         *logger.Logger
}

type Options struct {
	BaseURL        string
	StreamingURL   string
	QuestionPrefix string
}

func New(opts Options, client *httpclient.Client, log *logger.Logger) *Service {
	return &Service{
		baseURL:        strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		streamingURL:   strings.TrimSpace(opts.StreamingURL),
		questionPrefix: opts.QuestionPrefix,
		httpClient:     client,
		logger:         log.With("service", "generator"),
	}
}

// Generate asks for the whole deck and waits for it.
func (s *Service) Generate(ctx context.Context, req slides.SlideRequest) ([]slides.Slide, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal request")
	}

	resp, err := s.httpClient.PostJSON(ctx, s.baseURL+"/slide", body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamAPI, "generation API request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamAPI, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("generation API error", "status", resp.StatusCode, "body", string(respBody))
		return nil, statusError(resp.StatusCode, respBody)
	}

	var out []slides.Slide
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamAPI, "failed to parse slides response")
	}
	return out, nil
}

// Stream opens the streaming endpoint. The caller owns the returned decoder
// and must Close it if it stops before io.EOF.
func (s *Service) Stream(ctx context.Context, req slides.SlideRequest) (*stream.Decoder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal request")
	}

	resp, err := s.httpClient.Post(ctx, s.streamingURL, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "text/event-stream",
	}, body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUpstreamAPI, "streaming API request failed")
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		s.logger.Error("streaming API error", "status", resp.StatusCode, "body", string(respBody))
		return nil, statusError(resp.StatusCode, respBody)
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, errors.New(errors.ErrCodeUpstreamAPI, "streaming response has no body")
	}

	return stream.NewDecoder(resp.Body, stream.Options{QuestionPrefix: s.questionPrefix}), nil
}

// statusError prefers the server's {"detail": ...} text over a generic message.
func statusError(status int, body []byte) error {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch d := payload.Detail.(type) {
		case string:
			if strings.TrimSpace(d) != "" {
				return errors.New(errors.ErrCodeUpstreamAPI, d)
			}
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				return errors.New(errors.ErrCodeUpstreamAPI, string(b))
			}
		}
	}
	return errors.New(errors.ErrCodeUpstreamAPI, fmt.Sprintf("generation API returned %d", status))
}
