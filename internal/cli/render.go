package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ChaseRain/lessonslides/internal/render"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	index    int
	template int
	preview  bool
	width    float64
	height   float64
	out      string
}

var renderOpts renderOptions

var renderCmd = &cobra.Command{
	Use:   "render [deck.json]",
	Short: "Draw one slide to PNG",
	Long: `Draw one slide of a deck written by "slides generate" to a PNG file.

Without a deck file, --template draws that template with its default
fields, which is handy for previewing the registry.

Examples:
  slides render deck.json --index 2 -o slide.png
  slides render --template 33 --preview -o timeline.png
  slides render deck.json --width 1280 --height 720 -o hd.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadServices(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()

		var path string
		if len(args) == 1 {
			path = args[0]
		}
		canvas, image, err := renderTarget(path, renderOpts)
		if err != nil {
			return err
		}

		opts := render.Options{Preview: renderOpts.preview}
		if renderOpts.width > 0 && renderOpts.height > 0 {
			opts.Scale = render.Fit(renderOpts.width, renderOpts.height)
		}
		data, err := a.Renderer.PNG(canvas, image, opts)
		if err != nil {
			return err
		}

		if renderOpts.out == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(renderOpts.out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), StyleOK.Render("wrote "+renderOpts.out))
		return nil
	},
}

// renderTarget picks the canvas to draw: a slide from the deck file at path,
// or the bare template when no path is given.
func renderTarget(path string, opts renderOptions) (slides.Canvas, string, error) {
	if path == "" {
		if opts.template == 0 {
			return slides.Canvas{}, "", errors.New(errors.ErrCodeInvalidReq, "either a deck file or --template is required")
		}
		return slides.Canvas{TemplateID: opts.template}, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return slides.Canvas{}, "", err
	}
	var list []slides.NormalizedSlide
	if err := json.Unmarshal(data, &list); err != nil {
		return slides.Canvas{}, "", errors.Wrap(err, errors.ErrCodeInvalidReq, "deck file is not valid JSON")
	}
	if opts.index < 0 || opts.index >= len(list) {
		return slides.Canvas{}, "", errors.New(errors.ErrCodeInvalidReq, fmt.Sprintf("slide index %d out of range (deck has %d)", opts.index, len(list)))
	}
	s := list[opts.index]
	canvas := s.Canvas
	if opts.template != 0 {
		canvas.TemplateID = opts.template
	}
	return canvas, s.Image, nil
}

func init() {
	f := renderCmd.Flags()
	f.IntVarP(&renderOpts.index, "index", "i", 0, "Slide index in the deck (0-based)")
	f.IntVar(&renderOpts.template, "template", 0, "Template id; overrides the slide's own when a deck is given")
	f.BoolVar(&renderOpts.preview, "preview", false, "Draw at preview scale")
	f.Float64Var(&renderOpts.width, "width", 0, "Fit the slide into this width")
	f.Float64Var(&renderOpts.height, "height", 0, "Fit the slide into this height")
	f.StringVarP(&renderOpts.out, "out", "o", "", "Output file (default stdout)")
}
