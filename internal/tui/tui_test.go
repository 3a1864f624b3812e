package tui

import (
	"context"
	"testing"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/infra/logger"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls int
	last  slides.SlideRequest
	list  []slides.Slide
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, req *orchestrator.SessionRequest, onProgress orchestrator.ProgressCallback) error {
	f.calls++
	f.last = req.Request
	if f.err != nil {
		onProgress(orchestrator.ProgressEvent{Stage: orchestrator.StageError, Message: orchestrator.FailureMessage})
		return f.err
	}
	for i, s := range f.list {
		idx := req.Deck.AppendSlide(s)
		onProgress(orchestrator.ProgressEvent{Stage: orchestrator.StageSlide, Index: idx})
		if i == 0 {
			onProgress(orchestrator.ProgressEvent{Stage: orchestrator.StageNavigate})
		}
	}
	onProgress(orchestrator.ProgressEvent{Stage: orchestrator.StageComplete})
	return nil
}

var threeSlides = []slides.Slide{
	{Type: slides.TypeTitle, Title: "Fotossíntese", Content: slides.Fields{}},
	{Type: slides.TypeContent, Title: "Luz", Content: slides.Fields{}},
	{Type: slides.TypeConclusion, Title: "Fim", Content: slides.Fields{}},
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

// drain feeds every relayed session message back into the model.
func drain(t *testing.T, m Model) Model {
	t.Helper()
	require.NotNil(t, m.events)
	for msg := range m.events {
		m = send(t, m, msg)
	}
	return m
}

func newModel(r Runner) Model {
	return InitialModel(context.Background(), r, deck.New(logger.NewNop()), true)
}

func fill(m Model, topic, grade, n string) Model {
	m.inputs[fieldTopic].SetValue(topic)
	m.inputs[fieldGrade].SetValue(grade)
	m.inputs[fieldSlides].SetValue(n)
	return m
}

func TestInvalidFormMakesNoCall(t *testing.T) {
	r := &fakeRunner{list: threeSlides}
	m := fill(newModel(r), "", "6º ano", "5")
	m.setFocus(fieldSlides)

	m = send(t, m, key("enter"))
	assert.Equal(t, formView, m.mode)
	assert.Equal(t, slides.MsgTopicRequired, m.err)
	assert.Equal(t, 0, r.calls)

	m = fill(m, "Água", "6º ano", "99")
	m = send(t, m, key("enter"))
	assert.Equal(t, slides.MsgSlidesRange, m.err)
	assert.Equal(t, 0, r.calls)
}

func TestEnterMovesThroughFields(t *testing.T) {
	m := newModel(&fakeRunner{})
	assert.Equal(t, fieldTopic, m.focus)

	m = send(t, m, key("enter"))
	assert.Equal(t, fieldGrade, m.focus)
	m = send(t, m, key("tab"))
	assert.Equal(t, fieldContext, m.focus)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, fieldGrade, m.focus)
}

func TestSubmitShowsListOnNavigate(t *testing.T) {
	r := &fakeRunner{list: threeSlides}
	m := fill(newModel(r), "  Fotossíntese ", "6º ano", "3")
	m.setFocus(fieldSlides)

	m = send(t, m, key("enter"))
	assert.Equal(t, generatingView, m.mode)
	assert.True(t, m.running)
	assert.Empty(t, m.err)

	m = drain(t, m)
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, "Fotossíntese", r.last.Topic)
	assert.Equal(t, listView, m.mode)
	assert.False(t, m.running)
	assert.Equal(t, 3, m.deck.Len())
	assert.Contains(t, m.View(), "Fotossíntese")
}

func TestFailureReturnsToForm(t *testing.T) {
	r := &fakeRunner{err: errors.New(errors.ErrCodeUpstreamAPI, "boom")}
	m := fill(newModel(r), "Água", "6º ano", "3")

	m, _ = m.submitModel(t)
	m = drain(t, m)

	assert.Equal(t, formView, m.mode)
	assert.Equal(t, orchestrator.FailureMessage, m.err)
	assert.Contains(t, m.View(), orchestrator.FailureMessage)
}

func TestSlideshowKeys(t *testing.T) {
	r := &fakeRunner{list: threeSlides}
	m := fill(newModel(r), "Água", "6º ano", "3")
	m, _ = m.submitModel(t)
	m = drain(t, m)
	require.Equal(t, listView, m.mode)

	m = send(t, m, key("j"))
	assert.Equal(t, 1, m.cursor)

	m = send(t, m, key("f"))
	require.Equal(t, showView, m.mode)
	assert.Equal(t, 0, m.show.Pointer())

	m = send(t, m, key("left"))
	assert.Equal(t, 0, m.show.Pointer())

	m = send(t, m, key("right"))
	m = send(t, m, key("right"))
	assert.Equal(t, 2, m.show.Pointer())
	assert.Contains(t, m.View(), "3/3")

	// past the last slide
	m = send(t, m, key("right"))
	assert.Equal(t, listView, m.mode)
	assert.False(t, m.show.Active())

	m = send(t, m, key("f"))
	m = send(t, m, key("right"))
	m = send(t, m, key("esc"))
	assert.Equal(t, listView, m.mode)
	assert.Equal(t, 0, m.show.Pointer())
}

func TestEmptyDeckCannotPresent(t *testing.T) {
	m := newModel(&fakeRunner{})
	m.mode = listView

	m = send(t, m, key("f"))
	assert.Equal(t, listView, m.mode)
	assert.Contains(t, m.View(), "Nenhum slide")
}

func TestSlideText(t *testing.T) {
	title, body := slideText(slides.NormalizedSlide{Canvas: slides.Canvas{
		TemplateID: 54,
		Fields:     slides.Fields{"statement": "Qual?", "options": []any{"a", "b"}, "correct_answer": float64(1)},
	}})
	assert.Equal(t, "Qual?", title)
	assert.Equal(t, []string{"  A) a", "* B) b"}, body)

	title, body = slideText(slides.NormalizedSlide{Canvas: slides.Canvas{TemplateID: 99}})
	assert.Contains(t, title, "99")
	assert.Empty(t, body)
}

func (m Model) submitModel(t *testing.T) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.submit()
	return next.(Model), cmd
}
