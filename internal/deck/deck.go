// Package deck keeps the ordered slide list of a generation session. All
// mutation goes through Deck's methods.
package deck

import (
	"context"
	"sync"

	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/infra/metrics"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

// AgendaIndex is where an agenda slide lands, right after the title slide.
const AgendaIndex = 1

// leadingSlides is the number of fixed slides (title, agenda) the API does
// not count in its content-slide numbering.
const leadingSlides = 2

type Deck struct {
	mu     sync.RWMutex
	slides []slides.NormalizedSlide
	cancel context.CancelFunc
	// session numbers the current generation session; every reset bumps it
	session uint64
	logger  *logger.Logger
}

type sessionKey struct{}

func New(log *logger.Logger) *Deck {
	return &Deck{logger: log}
}

// Begin resets the deck and returns a context tied to the new session. A
// later Begin or Reset cancels it, which stops any stream still reading, and
// the *Context mutators refuse writes made with it from then on.
func (d *Deck) Begin(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
	d.cancel = cancel
	return context.WithValue(ctx, sessionKey{}, d.session)
}

// ownsLocked fails unless ctx belongs to the session currently feeding the
// deck.
func (d *Deck) ownsLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id, ok := ctx.Value(sessionKey{}).(uint64); !ok || id != d.session {
		return context.Canceled
	}
	return nil
}

// Reset cancels the in-flight session, if any, and empties the deck.
func (d *Deck) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *Deck) resetLocked() {
	d.session++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.slides = nil
}

// AppendSlide appends s, except that an agenda slide is kept at AgendaIndex
// whatever its arrival order. An agenda that arrives into an empty deck waits
// at index 0 and the next slide is placed in front of it. It returns the
// index the slide landed at.
func (d *Deck) AppendSlide(s slides.Slide) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.appendLocked(s)
}

// AppendSlideContext is AppendSlide on behalf of the session ctx came from
// Begin with. A superseded session changes nothing.
func (d *Deck) AppendSlideContext(ctx context.Context, s slides.Slide) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ownsLocked(ctx); err != nil {
		return 0, err
	}
	return d.appendLocked(s), nil
}

func (d *Deck) appendLocked(s slides.Slide) int {
	n := slides.Normalize(len(d.slides), s)
	switch {
	case s.Type == slides.TypeAgenda && len(d.slides) >= AgendaIndex:
		d.insertLocked(AgendaIndex, n)
		return AgendaIndex
	case s.Type != slides.TypeAgenda && len(d.slides) == 1 && d.slides[0].Type == slides.TypeAgenda:
		d.insertLocked(0, n)
		return 0
	default:
		d.slides = append(d.slides, n)
		return len(d.slides) - 1
	}
}

func (d *Deck) insertLocked(at int, n slides.NormalizedSlide) {
	d.slides = append(d.slides, slides.NormalizedSlide{})
	copy(d.slides[at+1:], d.slides[at:])
	d.slides[at] = n
	d.reindexLocked()
}

// Replace swaps the whole list for an already ordered one, as returned by
// the blocking endpoint.
func (d *Deck) Replace(list []slides.Slide) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.replaceLocked(list)
}

func (d *Deck) ReplaceContext(ctx context.Context, list []slides.Slide) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ownsLocked(ctx); err != nil {
		return err
	}
	d.replaceLocked(list)
	return nil
}

func (d *Deck) replaceLocked(list []slides.Slide) {
	d.slides = make([]slides.NormalizedSlide, len(list))
	for i, s := range list {
		d.slides[i] = slides.Normalize(i, s)
	}
}

// Restore loads a previously saved snapshot.
func (d *Deck) Restore(list []slides.NormalizedSlide) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.slides = append([]slides.NormalizedSlide(nil), list...)
	d.reindexLocked()
}

// AttachQuestion sets the question of the content slide it targets, found at
// (slide_number - 1) + 2. Without a slide number the current count of
// content slides is used. It returns the target index and whether the
// question was attached; an out-of-range target leaves the deck unchanged.
func (d *Deck) AttachQuestion(q slides.Question) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attachLocked(q)
}

func (d *Deck) AttachQuestionContext(ctx context.Context, q slides.Question) (int, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ownsLocked(ctx); err != nil {
		return 0, false, err
	}
	at, ok := d.attachLocked(q)
	return at, ok, nil
}

func (d *Deck) attachLocked(q slides.Question) (int, bool) {
	number := d.contentCountLocked()
	if q.SlideNumber != nil {
		number = *q.SlideNumber
	}
	target := number - 1 + leadingSlides

	if target < 0 || target >= len(d.slides) {
		metrics.QuestionsDropped.Inc()
		d.logger.Warn("question target out of range, dropped",
			"slide_number", number,
			"target_index", target,
			"slides", len(d.slides),
		)
		return target, false
	}

	qc := q
	d.slides[target].Question = &qc
	return target, true
}

// UpdateFields replaces the field bag of the slide at index.
func (d *Deck) UpdateFields(index int, fields slides.Fields) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkIndexLocked(index); err != nil {
		return err
	}
	d.slides[index].Canvas.Fields = fields.Clone()
	return nil
}

func (d *Deck) RemoveSlide(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkIndexLocked(index); err != nil {
		return err
	}
	d.slides = append(d.slides[:index], d.slides[index+1:]...)
	d.reindexLocked()
	return nil
}

// PromoteQuestion moves the question attached to the slide at index onto a
// new question slide (template 54) inserted right after it.
func (d *Deck) PromoteQuestion(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkIndexLocked(index); err != nil {
		return err
	}
	q := d.slides[index].Question
	if q == nil {
		return errors.New(errors.ErrCodeInvalidReq, "slide has no question to promote")
	}

	promoted := slides.NormalizedSlide{
		Type: slides.TypeQuestion,
		Canvas: slides.Canvas{
			TemplateID: slides.QuestionTemplateID,
			Fields: slides.Fields{
				"statement":      q.Statement,
				"options":        append([]string(nil), q.Options...),
				"correct_answer": q.CorrectAnswer,
			},
		},
	}

	d.slides[index].Question = nil
	d.insertLocked(index+1, promoted)
	return nil
}

// Slides returns a snapshot safe to read while the deck keeps changing.
func (d *Deck) Slides() []slides.NormalizedSlide {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]slides.NormalizedSlide, len(d.slides))
	copy(out, d.slides)
	return out
}

// SlidesContext is Slides for the session ctx came from Begin with; it fails
// once that session has been superseded.
func (d *Deck) SlidesContext(ctx context.Context) ([]slides.NormalizedSlide, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.ownsLocked(ctx); err != nil {
		return nil, err
	}
	out := make([]slides.NormalizedSlide, len(d.slides))
	copy(out, d.slides)
	return out, nil
}

func (d *Deck) Get(index int) (slides.NormalizedSlide, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := d.checkIndexLocked(index); err != nil {
		return slides.NormalizedSlide{}, err
	}
	return d.slides[index], nil
}

func (d *Deck) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.slides)
}

func (d *Deck) contentCountLocked() int {
	n := 0
	for _, s := range d.slides {
		if s.Type == slides.TypeContent {
			n++
		}
	}
	return n
}

func (d *Deck) checkIndexLocked(index int) error {
	if index < 0 || index >= len(d.slides) {
		return errors.New(errors.ErrCodeNotFound, "slide index out of range")
	}
	return nil
}

func (d *Deck) reindexLocked() {
	for i := range d.slides {
		d.slides[i].ID = i
	}
}
