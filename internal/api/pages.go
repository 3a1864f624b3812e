package api

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/gin-gonic/gin"
)

//go:embed pages/*.tmpl
var pagesFS embed.FS

func pageTemplates() *template.Template {
	return template.Must(template.New("pages").
		Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
		ParseFS(pagesFS, "pages/*.tmpl"))
}

// failedFormURL sends the visitor back to the form with the generation
// failure message shown.
const failedFormURL = "/?error=generation"

type formPage struct {
	Error     string
	Form      CreatePresentationRequest
	MinSlides int
	MaxSlides int
}

type pageSlide struct {
	Index    int
	Key      string
	Full     template.HTML
	Preview  template.HTML
	Question *slides.Question
}

type presentationPage struct {
	ID         string
	Slides     []pageSlide
	Generating bool
	Width      int
	Height     int
}

func newFormPage(form CreatePresentationRequest, msg string) formPage {
	if form.NSlides == 0 {
		form.NSlides = slides.DefaultSlides
	}
	return formPage{Error: msg, Form: form, MinSlides: slides.MinSlides, MaxSlides: slides.MaxSlides}
}

func (h *Handler) FormPage(c *gin.Context) {
	msg := ""
	if c.Query("error") == "generation" {
		msg = orchestrator.FailureMessage
	}
	c.HTML(http.StatusOK, "form", newFormPage(CreatePresentationRequest{}, msg))
}

// SubmitForm validates inline, then starts a run. A streaming run redirects
// to the presentation as soon as the first chunk lands; a blocking one once
// the deck is complete.
func (h *Handler) SubmitForm(c *gin.Context) {
	var form CreatePresentationRequest
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "form", newFormPage(form, slides.MsgSlidesRange))
		return
	}

	sr := form.SlideRequest().Trimmed()
	if err := sr.Validate(); err != nil {
		c.HTML(http.StatusBadRequest, "form", newFormPage(form, errors.MessageOf(err)))
		return
	}

	s := h.start("", sr, form.Stream)
	ev, err := s.waitFor(c.Request.Context(), func(ev orchestrator.ProgressEvent) bool {
		return ev.Stage == orchestrator.StageNavigate
	})
	if err != nil {
		return
	}
	if ev.Stage != orchestrator.StageNavigate {
		if st, _ := s.status(); st == StatusFailed || s.deck.Len() == 0 {
			c.HTML(http.StatusBadGateway, "form", newFormPage(form, orchestrator.FailureMessage))
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/presentation?id="+url.QueryEscape(s.id))
}

// PresentationPage shows the deck; without one there is nothing to present
// and the visitor goes back to the form. A run that failed brings its
// failure message along.
func (h *Handler) PresentationPage(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if s, ok := h.sessions.get(id); ok {
		if st, _ := s.status(); st == StatusFailed {
			c.Redirect(http.StatusFound, failedFormURL)
			return
		}
	}
	d, err := h.deckFor(c.Request.Context(), id)
	if err != nil || d.Len() == 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}

	w, hgt := render.Size(1)
	page := presentationPage{
		ID:     id,
		Slides: h.pageSlides(d.Slides()),
		Width:  w,
		Height: hgt,
	}
	if s, ok := h.sessions.get(id); ok {
		st, _ := s.status()
		page.Generating = st == StatusPending
	}
	c.HTML(http.StatusOK, "presentation", page)
}

// SlideList is the slide-list fragment the presentation page swaps in while
// a stream is still filling the deck.
func (h *Handler) SlideList(c *gin.Context) {
	id := c.Query("id")
	d, err := h.deckFor(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, id, err)
		return
	}
	c.HTML(http.StatusOK, "slide_list", h.pageSlides(d.Slides()))
}

func (h *Handler) pageSlides(list []slides.NormalizedSlide) []pageSlide {
	out := make([]pageSlide, len(list))
	for i, sl := range list {
		full, err := render.HTMLString(sl.Canvas, sl.Image, render.Options{Scale: 1})
		if err != nil {
			h.logger.Warn("slide not renderable", "index", i, "template_id", sl.Canvas.TemplateID, "error", err)
			full = missingTemplate(sl.Canvas.TemplateID)
		}
		preview, err := render.HTMLString(sl.Canvas, sl.Image, render.Options{Preview: true})
		if err != nil {
			preview = missingTemplate(sl.Canvas.TemplateID)
		}
		out[i] = pageSlide{
			Index:    i,
			Key:      slides.TemplateKey(sl.Canvas.TemplateID),
			Full:     full,
			Preview:  preview,
			Question: sl.Question,
		}
	}
	return out
}

func missingTemplate(id int) template.HTML {
	return template.HTML(fmt.Sprintf(`<div class="slide-missing">Modelo %s indisponível</div>`, slides.TemplateKey(id)))
}
