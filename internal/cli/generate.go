package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ChaseRain/lessonslides/internal/app"
	"github.com/ChaseRain/lessonslides/internal/deck"
	"github.com/ChaseRain/lessonslides/internal/service/orchestrator"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	request slides.SlideRequest
	stream  bool
	out     string
	bundle  string
}

var generateOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a deck and print it as JSON",
	Long: `Generate a deck in one go and write its normalized slides as JSON.

Progress goes to stderr; the deck goes to stdout unless --out is set.
With --bundle the deck is also written as a ZIP of deck.json plus one PNG
per slide.

Examples:
  slides generate --topic "Fotossíntese" --grade "6º ano" --slides 8
  slides generate -t "Frações" -g "5º ano" --stream -o deck.json --bundle deck.zip`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadServices(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if generateOpts.out != "" {
			f, err := os.Create(generateOpts.out)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return runGenerate(cmd.Context(), a, generateOpts, out, cmd.ErrOrStderr())
	},
}

func runGenerate(ctx context.Context, a *app.App, opts generateOptions, out, progress io.Writer) error {
	d := deck.New(a.Logger)
	err := a.Orchestrator.Run(ctx, &orchestrator.SessionRequest{
		SessionID: "cli",
		Deck:      d,
		Request:   opts.request,
		Stream:    opts.stream,
	}, func(ev orchestrator.ProgressEvent) {
		fmt.Fprintln(progress, progressLine(ev))
	})
	if err != nil {
		return err
	}

	list := d.Slides()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return err
	}

	if opts.bundle != "" {
		data, err := a.Exporter.Bundle(ctx, list)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.bundle, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintln(progress, StyleOK.Render("bundle written to "+opts.bundle))
	}
	return nil
}

func progressLine(ev orchestrator.ProgressEvent) string {
	switch ev.Stage {
	case orchestrator.StageSlide:
		return StyleStage.Render(fmt.Sprintf("slide %d", ev.Index+1))
	case orchestrator.StageQuestion:
		return StyleStage.Render(fmt.Sprintf("question on slide %d", ev.Index+1))
	case orchestrator.StageNavigate:
		return StyleDim.Render("first slide ready")
	case orchestrator.StageComplete:
		return StyleOK.Render("complete")
	case orchestrator.StageError:
		return StyleError.Render(ev.Message)
	}
	return StyleDim.Render(ev.Stage)
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateOpts.request.Topic, "topic", "t", "", "Lesson topic")
	f.StringVarP(&generateOpts.request.Grade, "grade", "g", "", "Grade level")
	f.StringVar(&generateOpts.request.Context, "context", "", "Extra context for the generator")
	f.IntVarP(&generateOpts.request.NSlides, "slides", "n", slides.DefaultSlides, "Number of slides (1-30)")
	f.BoolVar(&generateOpts.stream, "stream", false, "Use the streaming endpoint")
	f.StringVarP(&generateOpts.out, "out", "o", "", "Write the deck JSON to this file")
	f.StringVar(&generateOpts.bundle, "bundle", "", "Also write a ZIP bundle to this file")
}
