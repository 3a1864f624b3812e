package orchestrator

import (
	"context"
	"io"
	"time"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/infra/limiter"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/infra/metrics"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/internal/stream"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

// FailureMessage is the only text users see when generation fails; the cause
// goes to the log.
const FailureMessage = "Não foi possível gerar a apresentação. Tente novamente."

// Event stages, in the order a streaming session emits them.
const (
	StageNavigate = "navigate"
	StageSlide    = "slide"
	StageQuestion = "question"
	StageComplete = "complete"
	StageError    = "error"
)

const (
	modeBlocking = "blocking"
	modeStream   = "stream"
)

// Generator is the upstream slide-generation API.
type Generator interface {
	Generate(ctx context.Context, req slides.SlideRequest) ([]slides.Slide, error)
	Stream(ctx context.Context, req slides.SlideRequest) (*stream.Decoder, error)
}

// Snapshotter persists finished decks. Optional.
type Snapshotter interface {
	SaveDeck(ctx context.Context, id string, list []slides.NormalizedSlide) error
}

type SessionRequest struct {
	SessionID string
	Deck      *deck.Deck
	Request   slides.SlideRequest
	Stream    bool
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Stage   string      `json:"stage"`
	Message string      `json:"message,omitempty"`
	Index   int         `json:"index"`
	Data    interface{} `json:"data,omitempty"`
}

// ProgressCallback is invoked synchronously from the session goroutine.
type ProgressCallback func(event ProgressEvent)

type Orchestrator struct {
	generator Generator
	snapshots Snapshotter
	limiter   *limiter.Limiter
	logger    *logger.Logger
}

func New(generator Generator, snapshots Snapshotter, lim *limiter.Limiter, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		generator: generator,
		snapshots: snapshots,
		limiter:   lim,
		logger:    log.With("service", "orchestrator"),
	}
}

// Run executes one generation session into req.Deck. Validation failures
// return before the deck is touched or the network is used. Any later
// failure empties the deck and reports FailureMessage; the returned error
// keeps the cause.
func (o *Orchestrator) Run(ctx context.Context, req *SessionRequest, onProgress ProgressCallback) error {
	emit := func(ev ProgressEvent) {
		if onProgress != nil {
			onProgress(ev)
		}
	}

	request := req.Request.Trimmed()
	if err := request.Validate(); err != nil {
		emit(ProgressEvent{Stage: StageError, Message: errors.MessageOf(err)})
		return err
	}

	mode := modeBlocking
	if req.Stream {
		mode = modeStream
	}
	log := o.logger.With("session_id", req.SessionID, "mode", mode)

	// Begin cancels whatever session was still feeding this deck.
	sessionCtx := req.Deck.Begin(ctx)

	release, err := o.limiter.Acquire(sessionCtx)
	if err != nil {
		err = errors.Wrap(err, errors.ErrCodeRateLimited, "rate limit exceeded")
		o.fail(ctx, sessionCtx, req.Deck, log, mode, err, emit)
		return err
	}
	defer release()

	metrics.GenerationsStarted.WithLabelValues(mode).Inc()
	start := time.Now()
	log.Info("starting generation",
		"topic", request.Topic,
		"grade", request.Grade,
		"n_slides", request.NSlides,
	)

	if req.Stream {
		err = o.runStream(sessionCtx, req.Deck, request, log, emit)
	} else {
		err = o.runBlocking(sessionCtx, req.Deck, request)
	}
	if err != nil {
		o.fail(ctx, sessionCtx, req.Deck, log, mode, err, emit)
		return err
	}

	list, err := req.Deck.SlidesContext(sessionCtx)
	if err != nil {
		o.fail(ctx, sessionCtx, req.Deck, log, mode, err, emit)
		return err
	}
	metrics.GenerationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	log.Info("generation completed", "slides", len(list), "elapsed", time.Since(start).String())

	if o.snapshots != nil {
		if err := o.snapshots.SaveDeck(ctx, req.SessionID, list); err != nil {
			log.Warn("failed to save deck snapshot", "error", err)
		}
	}

	emit(ProgressEvent{Stage: StageComplete, Data: map[string]int{"slides": len(list)}})
	return nil
}

func (o *Orchestrator) runBlocking(ctx context.Context, d *deck.Deck, req slides.SlideRequest) error {
	list, err := o.generator.Generate(ctx, req)
	if err != nil {
		return err
	}
	return d.ReplaceContext(ctx, list)
}

func (o *Orchestrator) runStream(ctx context.Context, d *deck.Deck, req slides.SlideRequest, log *logger.Logger, emit func(ProgressEvent)) error {
	dec, err := o.generator.Stream(ctx, req)
	if err != nil {
		return err
	}
	defer dec.Close()

	navigated := false
	for {
		chunk, err := dec.Next()
		if err == io.EOF {
			// a superseded stream may still run to its end
			return ctx.Err()
		}
		if err != nil {
			return err
		}
		// a newer session owns the deck now
		if err := ctx.Err(); err != nil {
			return err
		}

		metrics.ChunksDecoded.WithLabelValues(string(chunk.Type)).Inc()
		switch chunk.Type {
		case stream.ChunkSlide:
			at, err := d.AppendSlideContext(ctx, *chunk.Slide)
			if err != nil {
				return err
			}
			emit(ProgressEvent{Stage: StageSlide, Index: at, Data: chunk.Slide})
		case stream.ChunkQuestion:
			at, ok, err := d.AttachQuestionContext(ctx, *chunk.Question)
			if err != nil {
				return err
			}
			if ok {
				emit(ProgressEvent{Stage: StageQuestion, Index: at, Data: chunk.Question})
			}
		}

		if !navigated {
			navigated = true
			log.Debug("first chunk received")
			emit(ProgressEvent{Stage: StageNavigate})
		}
	}
}

// fail discards the partial deck unless the session was superseded by a
// newer one, which already owns the deck.
func (o *Orchestrator) fail(parent, sessionCtx context.Context, d *deck.Deck, log *logger.Logger, mode string, cause error, emit func(ProgressEvent)) {
	superseded := parent.Err() == nil && sessionCtx.Err() != nil
	if !superseded {
		d.Reset()
	}

	code := errors.CodeOf(cause)
	metrics.GenerationsFailed.WithLabelValues(mode, code).Inc()
	log.Error("generation failed", "error", cause, "error_code", code, "superseded", superseded)

	emit(ProgressEvent{Stage: StageError, Message: FailureMessage})
}
