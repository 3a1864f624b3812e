package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Snapshots persists decks beyond the life of the process.
type Snapshots interface {
	SaveDeck(ctx context.Context, id string, list []slides.NormalizedSlide) error
	LoadDeck(ctx context.Context, id string) ([]slides.NormalizedSlide, error)
	DeleteDeck(ctx context.Context, id string) error
}

type Exporter interface {
	Export(ctx context.Context, sessionID string, list []slides.NormalizedSlide) (string, error)
}

type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Decks        *deck.Store
	Renderer     *render.ImageRenderer
	Exporter     Exporter
	// Snapshots may be nil; decks then live in memory only.
	Snapshots Snapshots
	Logger    *logger.Logger
	// BaseContext bounds background generation runs, which outlive the
	// request that started them. Defaults to context.Background.
	BaseContext context.Context
}

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	decks        *deck.Store
	renderer     *render.ImageRenderer
	exporter     Exporter
	snapshots    Snapshots
	sessions     *sessions
	baseCtx      context.Context
	logger       *logger.Logger
}

func NewHandler(deps Deps) *Handler {
	baseCtx := deps.BaseContext
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Handler{
		orchestrator: deps.Orchestrator,
		decks:        deps.Decks,
		renderer:     deps.Renderer,
		exporter:     deps.Exporter,
		snapshots:    deps.Snapshots,
		sessions:     newSessions(),
		baseCtx:      baseCtx,
		logger:       deps.Logger,
	}
}

// start launches a generation run in the background. Reusing an existing
// session id regenerates into that deck, cancelling any stream still
// feeding it.
func (h *Handler) start(sessionID string, req slides.SlideRequest, stream bool) *session {
	var d *deck.Deck
	if sessionID != "" {
		d = h.decks.GetOrCreate(sessionID)
	} else {
		sessionID, d = h.decks.Create()
	}

	s := newSession(sessionID, d)
	h.sessions.put(s)

	go func() {
		err := h.orchestrator.Run(h.baseCtx, &orchestrator.SessionRequest{
			SessionID: sessionID,
			Deck:      d,
			Request:   req,
			Stream:    stream,
		}, s.publish)
		s.finish(err)
	}()
	return s
}

func (h *Handler) CreatePresentation(c *gin.Context) {
	var req CreatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("invalid request", "error", err)
		h.handleError(c, "", errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid request body"))
		return
	}

	sr := req.SlideRequest().Trimmed()
	if err := sr.Validate(); err != nil {
		h.handleError(c, "", err)
		return
	}

	s := h.start(c.Query("session_id"), sr, req.Stream)

	// 流式输出
	if req.Stream {
		h.streamSession(c, s)
		return
	}

	if _, err := s.waitFor(c.Request.Context(), func(orchestrator.ProgressEvent) bool { return false }); err != nil {
		return
	}
	h.respondPresentation(c, s.id, s.deck, s, true)
}

func (h *Handler) GetPresentation(c *gin.Context) {
	id := c.Param("id")
	d, err := h.deckFor(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, id, err)
		return
	}
	s, _ := h.sessions.get(id)
	h.respondPresentation(c, id, d, s, false)
}

// Events attaches to a running or finished session as SSE, replaying what
// already happened.
func (h *Handler) Events(c *gin.Context) {
	s, ok := h.sessions.get(c.Param("id"))
	if !ok {
		h.handleError(c, c.Param("id"), errSessionNotFound())
		return
	}
	h.streamSession(c, s)
}

func (h *Handler) DeletePresentation(c *gin.Context) {
	id := c.Param("id")
	h.decks.Delete(id)
	h.sessions.delete(id)
	if h.snapshots != nil {
		if err := h.snapshots.DeleteDeck(c.Request.Context(), id); err != nil {
			h.handleError(c, id, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) streamSession(c *gin.Context, s *session) {
	// 设置 SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	sendEvent := func(ev StreamEvent) {
		ev.SessionID = s.id
		jsonData, _ := json.Marshal(ev)
		fmt.Fprintf(c.Writer, "event: %s\n", ev.Event)
		fmt.Fprintf(c.Writer, "data: %s\n\n", jsonData)
		c.Writer.Flush()
	}

	sendEvent(StreamEvent{Event: EventTypeStart, Data: map[string]int64{"timestamp": time.Now().Unix()}})

	ctx := c.Request.Context()
	cursor := 0
	for {
		evs, done, err := s.next(ctx, cursor)
		if err != nil {
			// client went away; the run continues for other subscribers
			return
		}
		if done {
			return
		}
		for _, ev := range evs {
			sendEvent(toStreamEvent(ev))
		}
		cursor += len(evs)
	}
}

func toStreamEvent(ev orchestrator.ProgressEvent) StreamEvent {
	out := StreamEvent{Event: ev.Stage, Data: ev.Data, Message: ev.Message}
	if ev.Stage == orchestrator.StageSlide || ev.Stage == orchestrator.StageQuestion {
		i := ev.Index
		out.Index = &i
	}
	return out
}

// respondPresentation writes the deck with its session status. A failed run
// maps to an error status only for the request that started it.
func (h *Handler) respondPresentation(c *gin.Context, id string, d *deck.Deck, s *session, failStatus bool) {
	resp := PresentationResponse{ID: id, Status: StatusSucceeded, Slides: d.Slides()}
	status := http.StatusOK
	if s != nil {
		st, err := s.status()
		resp.Status = st
		if err != nil {
			if failStatus {
				status = errors.HTTPStatus(err)
			}
			resp.Error = &ErrorBody{Code: errors.CodeOf(err), Message: orchestrator.FailureMessage}
		}
	}
	c.JSON(status, resp)
}

// deckFor returns the live deck for id, restoring it from snapshots when
// the process no longer holds it.
func (h *Handler) deckFor(ctx context.Context, id string) (*deck.Deck, error) {
	if d, ok := h.decks.Get(id); ok {
		return d, nil
	}
	if h.snapshots == nil {
		return nil, errSessionNotFound()
	}
	list, err := h.snapshots.LoadDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	d := h.decks.GetOrCreate(id)
	d.Restore(list)
	h.logger.Info("deck restored from snapshot", "session_id", id, "slides", len(list))
	return d, nil
}

// persist saves the deck after an edit. Failures are logged only; the live
// deck stays authoritative.
func (h *Handler) persist(ctx context.Context, id string, d *deck.Deck) {
	if h.snapshots == nil {
		return
	}
	if err := h.snapshots.SaveDeck(ctx, id, d.Slides()); err != nil {
		h.logger.Warn("failed to save deck snapshot", "session_id", id, "error", err)
	}
}

func (h *Handler) handleError(c *gin.Context, sessionID string, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err, "session_id", sessionID)
	}
	c.JSON(status, gin.H{
		"error": ErrorBody{
			Code:    errors.CodeOf(err),
			Message: errors.MessageOf(err),
		},
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Sessions: h.decks.Len()})
}
