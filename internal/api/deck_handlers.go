package api

import (
	"net/http"
	"strconv"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/gin-gonic/gin"
)

// slideTarget resolves the :id and :index params of a slide route.
func (h *Handler) slideTarget(c *gin.Context) (string, *deck.Deck, int, bool) {
	id := c.Param("id")
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.handleError(c, id, errors.New(errors.ErrCodeInvalidReq, "slide index must be an integer"))
		return "", nil, 0, false
	}
	d, err := h.deckFor(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, id, err)
		return "", nil, 0, false
	}
	return id, d, index, true
}

func (h *Handler) UpdateSlide(c *gin.Context) {
	id, d, index, ok := h.slideTarget(c)
	if !ok {
		return
	}
	var req UpdateSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, id, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid request body"))
		return
	}
	if err := d.UpdateFields(index, req.Fields); err != nil {
		h.handleError(c, id, err)
		return
	}
	h.persist(c.Request.Context(), id, d)

	sl, _ := d.Get(index)
	c.JSON(http.StatusOK, sl)
}

func (h *Handler) DeleteSlide(c *gin.Context) {
	id, d, index, ok := h.slideTarget(c)
	if !ok {
		return
	}
	if err := d.RemoveSlide(index); err != nil {
		h.handleError(c, id, err)
		return
	}
	h.persist(c.Request.Context(), id, d)
	c.JSON(http.StatusOK, PresentationResponse{ID: id, Status: StatusSucceeded, Slides: d.Slides()})
}

// PromoteQuestion turns a slide's attached question into a slide of its own.
func (h *Handler) PromoteQuestion(c *gin.Context) {
	id, d, index, ok := h.slideTarget(c)
	if !ok {
		return
	}
	if err := d.PromoteQuestion(index); err != nil {
		h.handleError(c, id, err)
		return
	}
	h.persist(c.Request.Context(), id, d)
	c.JSON(http.StatusOK, PresentationResponse{ID: id, Status: StatusSucceeded, Slides: d.Slides()})
}

// RenderSlide returns the slide as an HTML fragment. preview=1 gives the
// thumbnail; width and height fit it to a box.
func (h *Handler) RenderSlide(c *gin.Context) {
	id, d, index, ok := h.slideTarget(c)
	if !ok {
		return
	}
	sl, err := d.Get(index)
	if err != nil {
		h.handleError(c, id, err)
		return
	}

	out, err := render.HTMLString(sl.Canvas, sl.Image, renderOptions(c))
	if err != nil {
		h.handleError(c, id, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}

func (h *Handler) SlideImage(c *gin.Context) {
	id, d, index, ok := h.slideTarget(c)
	if !ok {
		return
	}
	sl, err := d.Get(index)
	if err != nil {
		h.handleError(c, id, err)
		return
	}

	png, err := h.renderer.PNG(sl.Canvas, sl.Image, renderOptions(c))
	if err != nil {
		h.handleError(c, id, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func renderOptions(c *gin.Context) render.Options {
	opts := render.Options{Preview: c.Query("preview") == "1" || c.Query("preview") == "true"}
	w, werr := strconv.ParseFloat(c.Query("width"), 64)
	hgt, herr := strconv.ParseFloat(c.Query("height"), 64)
	if werr == nil && herr == nil {
		if s := render.Fit(w, hgt); s > 0 {
			opts.Scale = s
		}
	}
	return opts
}

func (h *Handler) Export(c *gin.Context) {
	id := c.Param("id")
	d, err := h.deckFor(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, id, err)
		return
	}
	url, err := h.exporter.Export(c.Request.Context(), id, d.Slides())
	if err != nil {
		h.handleError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{URL: url})
}

// Templates lists the gallery; all=1 includes the question-only template.
func (h *Handler) Templates(c *gin.Context) {
	list := render.Gallery()
	if c.Query("all") == "1" {
		list = render.All()
	}
	out := make([]TemplateResponse, len(list))
	for i, t := range list {
		out[i] = TemplateResponse{
			ID:           t.ID,
			Key:          t.Key(),
			Name:         t.Name,
			Layout:       string(t.Layout),
			QuestionOnly: t.QuestionOnly(),
			Defaults:     t.Defaults,
		}
	}
	c.JSON(http.StatusOK, out)
}
