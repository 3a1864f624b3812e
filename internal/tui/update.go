package tui

import (
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case progressMsg:
		return m.handleProgress(orchestrator.ProgressEvent(msg))

	case doneMsg:
		return m.handleDone(msg)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case formView:
			return m.updateForm(msg)
		case listView:
			return m.updateList(msg)
		case showView:
			return m.updateShow(msg)
		}
		return m, nil
	}

	if m.mode == formView {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleProgress(ev orchestrator.ProgressEvent) (tea.Model, tea.Cmd) {
	switch ev.Stage {
	case orchestrator.StageNavigate:
		if m.mode == generatingView {
			m.mode = listView
			m.cursor = 0
		}
	case orchestrator.StageError:
		m.err = ev.Message
	}
	return m, waitForEvent(m.events)
}

func (m Model) handleDone(msg doneMsg) (tea.Model, tea.Cmd) {
	m.running = false
	if msg.err != nil {
		if m.err == "" {
			m.err = orchestrator.FailureMessage
		}
		wasShowing := m.show.Active()
		m.show.Exit()
		m.mode = formView
		m.setFocus(0)
		if wasShowing {
			return m, tea.ExitAltScreen
		}
		return m, nil
	}
	if m.mode == generatingView {
		m.mode = listView
		m.cursor = 0
	}
	return m, nil
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = (i + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.setFocus(m.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.setFocus(m.focus - 1)
		return m, nil
	case "enter":
		if m.focus < fieldCount-1 {
			m.setFocus(m.focus + 1)
			return m, nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates locally; nothing is sent while the form is invalid.
func (m Model) submit() (tea.Model, tea.Cmd) {
	req := m.request()
	if err := req.Validate(); err != nil {
		m.err = errors.MessageOf(err)
		return m, nil
	}
	m.err = ""
	m.mode = generatingView
	cmd := m.startGeneration(req)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := m.deck.Len()
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "f", "enter":
		if m.show.Enter(n) {
			m.mode = showView
			return m, tea.EnterAltScreen
		}
	case "n":
		if !m.running {
			m.mode = formView
			m.setFocus(0)
		}
	}
	return m, nil
}

// updateShow feeds keys to the slideshow. However it ends, the terminal
// leaves the alternate screen and the list is shown again.
func (m Model) updateShow(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.show.HandleKey(msg.String())
	if !m.show.Active() {
		m.mode = listView
		return m, tea.ExitAltScreen
	}
	return m, nil
}
