package slides

import (
	"strings"

	"github.com/ChaseRain/lessonslides/pkg/errors"
)

const (
	MinSlides     = 1
	MaxSlides     = 30
	DefaultSlides = 5

	MsgTopicRequired = "O tema da aula é obrigatório."
	MsgGradeRequired = "A série/ano é obrigatória."
	MsgSlidesRange   = "O número de slides deve estar entre 1 e 30."
)

// SlideRequest is what the form collects and the generation API receives.
type SlideRequest struct {
	Topic   string `json:"topic"`
	Grade   string `json:"grade"`
	Context string `json:"context,omitempty"`
	NSlides int    `json:"n_slides"`
}

// Validate checks the request before any network call. The first failing
// rule wins; its message is meant to be shown to the user as-is.
func (r SlideRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return errors.New(errors.ErrCodeInvalidReq, MsgTopicRequired)
	}
	if strings.TrimSpace(r.Grade) == "" {
		return errors.New(errors.ErrCodeInvalidReq, MsgGradeRequired)
	}
	if r.NSlides < MinSlides || r.NSlides > MaxSlides {
		return errors.New(errors.ErrCodeInvalidReq, MsgSlidesRange)
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from text fields.
func (r SlideRequest) Trimmed() SlideRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Grade = strings.TrimSpace(r.Grade)
	r.Context = strings.TrimSpace(r.Context)
	return r
}
