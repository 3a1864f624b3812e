package tui

import (
	"fmt"
	"strings"

	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleFocused = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	styleCursor  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

var fieldLabels = [fieldCount]string{"Tema da aula", "Série/ano", "Contexto", "Número de slides"}

func (m Model) View() string {
	switch m.mode {
	case generatingView:
		return fmt.Sprintf("\n  %s Gerando a apresentação…\n", m.spinner.View())
	case listView:
		return m.listView()
	case showView:
		return m.showView()
	}
	return m.formView()
}

func (m Model) formView() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Nova apresentação") + "\n\n")
	for i, in := range m.inputs {
		label := fieldLabels[i]
		if i == m.focus {
			label = styleFocused.Render(label)
		}
		b.WriteString(label + "\n" + in.View() + "\n\n")
	}
	if m.err != "" {
		b.WriteString(styleError.Render(m.err) + "\n\n")
	}
	b.WriteString(styleDim.Render("tab: próximo campo • enter: gerar • esc: sair"))
	return b.String()
}

func (m Model) listView() string {
	list := m.deck.Slides()

	var b strings.Builder
	b.WriteString(styleTitle.Render("Slides") + "\n\n")
	if len(list) == 0 {
		b.WriteString(styleDim.Render("Nenhum slide.") + "\n")
	}
	for i, s := range list {
		title, _ := slideText(s)
		line := fmt.Sprintf("%2d. [%s] %s", i+1, slides.TemplateKey(s.Canvas.TemplateID), title)
		if s.Question != nil {
			line += " ?"
		}
		if i == m.cursor {
			line = styleCursor.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	if m.cursor < len(list) {
		b.WriteString("\n" + m.card(list[m.cursor], m.width-4, 12) + "\n")
	}

	status := "↑/↓: navegar • f: tela cheia • n: nova • q: sair"
	if m.running {
		status = m.spinner.View() + " gerando… • " + status
	}
	b.WriteString("\n" + styleDim.Render(status))
	return b.String()
}

func (m Model) showView() string {
	list := m.deck.Slides()
	p := m.show.Pointer()
	if p >= len(list) {
		return ""
	}
	card := m.card(list[p], m.width-2, m.height-3)
	footer := styleDim.Render(fmt.Sprintf("%d/%d  ←/→ • esc", p+1, len(list)))
	return lipgloss.JoinVertical(lipgloss.Center, card, footer)
}

// card draws a slide as a bordered box in its template's theme, keeping the
// canvas aspect ratio where the terminal allows. Terminal cells are roughly
// twice as tall as they are wide.
func (m Model) card(s slides.NormalizedSlide, maxWidth, maxHeight int) string {
	width := maxWidth
	if h := int(float64(width) * render.CanvasHeight / render.CanvasWidth / 2); h > maxHeight {
		width = int(float64(maxHeight) * 2 * render.CanvasWidth / render.CanvasHeight)
	}
	if width < 20 {
		width = 20
	}
	height := int(float64(width) * render.CanvasHeight / render.CanvasWidth / 2)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1, 2).
		Width(width).
		Height(height)

	title, body := slideText(s)
	if t, err := render.Lookup(s.Canvas.TemplateID); err == nil {
		style = style.
			BorderForeground(lipgloss.Color(t.Theme.Accent)).
			Foreground(lipgloss.Color(t.Theme.Foreground)).
			Background(lipgloss.Color(t.Theme.Background))
	}

	content := lipgloss.NewStyle().Bold(true).Render(title)
	if len(body) > 0 {
		content += "\n\n" + strings.Join(body, "\n")
	}
	return style.Render(content)
}

// slideText flattens a slide's resolved fields to a title and body lines.
func slideText(s slides.NormalizedSlide) (string, []string) {
	t, err := render.Lookup(s.Canvas.TemplateID)
	if err != nil {
		return fmt.Sprintf("modelo %s indisponível", slides.TemplateKey(s.Canvas.TemplateID)), nil
	}
	f := t.Resolve(s.Canvas.Fields)

	var body []string
	add := func(v string) {
		if v != "" {
			body = append(body, v)
		}
	}
	bullets := func(items []string) {
		for _, it := range items {
			body = append(body, "• "+it)
		}
	}

	title := f.String("title")
	switch t.Layout {
	case render.LayoutQuestion:
		title = f.String("statement")
		correct := -1
		if v, ok := f["correct_answer"].(float64); ok {
			correct = int(v)
		} else if v, ok := f["correct_answer"].(int); ok {
			correct = v
		}
		for i, o := range f.Strings("options") {
			mark := " "
			if i == correct {
				mark = "*"
			}
			body = append(body, fmt.Sprintf("%s %c) %s", mark, 'A'+i, o))
		}
	case render.LayoutQuote:
		title = "“" + f.String("quote") + "”"
		add(f.String("author"))
	case render.LayoutComparison:
		add(f.String("leftTitle"))
		bullets(f.Strings("leftItems"))
		add(f.String("rightTitle"))
		bullets(f.Strings("rightItems"))
	case render.LayoutTwoColumn:
		add(f.String("left"))
		add(f.String("right"))
	case render.LayoutHighlight:
		add(f.String("value"))
		add(f.String("caption"))
	default:
		add(f.String("subtitle"))
		add(f.String("text"))
		bullets(f.Strings("items"))
	}

	if s.Question != nil && t.Layout != render.LayoutQuestion {
		body = append(body, "", "? "+s.Question.Statement)
	}
	return title, body
}
