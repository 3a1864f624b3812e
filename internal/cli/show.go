package cli

import (
	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var showStream bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Launch the interactive generator and presenter",
	Long: `Launch the terminal front end: a request form, a live slide list and a
fullscreen slideshow.

Form:
  Tab/↓      Next field
  Shift+Tab  Previous field
  Enter      Next field, or generate from the last one
  Esc        Quit

Slide list:
  ↑/k ↓/j    Move
  f/Enter    Present fullscreen from the first slide
  n          New deck
  q          Quit

Slideshow:
  →/Space    Next slide (past the last one leaves fullscreen)
  ←          Previous slide
  Esc        Leave fullscreen`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadServices(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		model := tui.InitialModel(cmd.Context(), a.Orchestrator, deck.New(a.Logger), showStream)

		p := tea.NewProgram(model)
		if _, err := p.Run(); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showStream, "stream", true, "Show slides as they stream in")
}
