package cli

import (
	"fmt"
	"io"

	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/spf13/cobra"
)

var templatesAll bool

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"tpl"},
	Short:   "List the slide template registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		list := render.Gallery()
		if templatesAll {
			list = render.All()
		}
		writeTemplates(cmd.OutOrStdout(), list)
		return nil
	},
}

func writeTemplates(w io.Writer, list []render.Template) {
	fmt.Fprintln(w, StyleHeader.Render(fmt.Sprintf(" %-3s %-26s %-11s %-7s ", "ID", "NAME", "LAYOUT", "THEME")))
	for _, t := range list {
		fmt.Fprintf(w, " %-3s %-26s %-11s %-7s %s%s\n",
			t.Key(), t.Name, t.Layout, t.Theme.Name,
			swatch(t.Theme.Background), swatch(t.Theme.Accent))
	}
}

func init() {
	templatesCmd.Flags().BoolVar(&templatesAll, "all", false, "Include question-only templates")
}
