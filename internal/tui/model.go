package tui

import (
	"context"
	"strconv"

	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/internal/slideshow"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type viewMode int

const (
	formView viewMode = iota
	generatingView
	listView
	showView
)

// form fields, in tab order
const (
	fieldTopic = iota
	fieldGrade
	fieldContext
	fieldSlides
	fieldCount
)

// Runner executes a generation session.
type Runner interface {
	Run(ctx context.Context, req *orchestrator.SessionRequest, onProgress orchestrator.ProgressCallback) error
}

type progressMsg orchestrator.ProgressEvent

type doneMsg struct{ err error }

type Model struct {
	ctx    context.Context
	runner Runner
	deck   *deck.Deck
	stream bool

	mode    viewMode
	inputs  []textinput.Model
	focus   int
	err     string
	spinner spinner.Model
	events  chan tea.Msg
	running bool

	cursor int
	show   slideshow.Show

	width  int
	height int
}

// InitialModel starts on the request form. With stream set, the slide list
// opens as soon as the first slide arrives.
func InitialModel(ctx context.Context, runner Runner, d *deck.Deck, stream bool) Model {
	inputs := make([]textinput.Model, fieldCount)
	placeholders := [fieldCount]string{"Fotossíntese", "6º ano", "opcional", strconv.Itoa(slides.DefaultSlides)}
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		ti.Placeholder = placeholders[i]
		inputs[i] = ti
	}
	inputs[fieldSlides].CharLimit = 2
	inputs[fieldSlides].SetValue(strconv.Itoa(slides.DefaultSlides))
	inputs[fieldTopic].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		runner:  runner,
		deck:    d,
		stream:  stream,
		mode:    formView,
		inputs:  inputs,
		spinner: sp,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// request reads the form. A non-numeric slide count is left at zero so that
// validation reports the range message.
func (m Model) request() slides.SlideRequest {
	n, _ := strconv.Atoi(m.inputs[fieldSlides].Value())
	return slides.SlideRequest{
		Topic:   m.inputs[fieldTopic].Value(),
		Grade:   m.inputs[fieldGrade].Value(),
		Context: m.inputs[fieldContext].Value(),
		NSlides: n,
	}.Trimmed()
}

// startGeneration runs the session in the background and relays its events
// as messages.
func (m *Model) startGeneration(req slides.SlideRequest) tea.Cmd {
	events := make(chan tea.Msg, 16)
	m.events = events
	m.running = true

	runner, ctx, d, stream := m.runner, m.ctx, m.deck, m.stream
	go func() {
		err := runner.Run(ctx, &orchestrator.SessionRequest{
			SessionID: "tui",
			Deck:      d,
			Request:   req,
			Stream:    stream,
		}, func(ev orchestrator.ProgressEvent) {
			events <- progressMsg(ev)
		})
		events <- doneMsg{err: err}
		close(events)
	}()

	return tea.Batch(waitForEvent(events), m.spinner.Tick)
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
