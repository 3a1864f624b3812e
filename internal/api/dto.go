package api

import "github.com/ChaseRain/lessonslides/internal/slides"

type CreatePresentationRequest struct {
	Topic   string `json:"topic" form:"topic"`
	Grade   string `json:"grade" form:"grade"`
	Context string `json:"context" form:"context"`
	NSlides int    `json:"n_slides" form:"n_slides"`
	Stream  bool   `json:"stream" form:"stream"`
}

func (r CreatePresentationRequest) SlideRequest() slides.SlideRequest {
	return slides.SlideRequest{
		Topic:   r.Topic,
		Grade:   r.Grade,
		Context: r.Context,
		NSlides: r.NSlides,
	}
}

type PresentationResponse struct {
	ID     string                   `json:"id"`
	Status string                   `json:"status"`
	Slides []slides.NormalizedSlide `json:"slides"`
	Error  *ErrorBody               `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UpdateSlideRequest struct {
	Fields slides.Fields `json:"generationTemplate" binding:"required"`
}

type ExportResponse struct {
	URL string `json:"url"`
}

type TemplateResponse struct {
	ID           int           `json:"id"`
	Key          string        `json:"key"`
	Name         string        `json:"name"`
	Layout       string        `json:"layout"`
	QuestionOnly bool          `json:"question_only"`
	Defaults     slides.Fields `json:"defaults"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// StreamEvent is the JSON payload of one SSE message.
type StreamEvent struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Index     *int        `json:"index,omitempty"`
	Message   string      `json:"message,omitempty"`
	SessionID string      `json:"session_id"`
}

const (
	StatusPending   = "PENDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"

	// SSE event types beyond the orchestrator's stages
	EventTypeStart = "start"
)
