package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/ChaseRain/lessonslides/internal/infra/metrics"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var layouts = template.Must(template.New("layouts").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(templateFS, "templates/*.tmpl"))

// htmlView adds the precomputed inline styles to a view. Styles are built
// from numbers and theme constants only, never from slide fields.
type htmlView struct {
	view
	AccentText template.CSS
	AccentFill template.CSS
}

type frameView struct {
	View        view
	FrameStyle  template.CSS
	CanvasStyle template.CSS
	Body        template.HTML
}

// HTML writes the slide markup for canvas c. Field values are escaped by
// html/template; nothing is assembled from interpolated markup.
func HTML(w io.Writer, c slides.Canvas, image string, opts Options) error {
	v, err := newView(c, image, opts)
	if err != nil {
		return err
	}

	hv := htmlView{
		view:       v,
		AccentText: template.CSS("color: " + v.Template.Theme.Accent),
		AccentFill: template.CSS("background: " + v.Template.Theme.Accent),
	}

	var body bytes.Buffer
	if err := layouts.ExecuteTemplate(&body, string(v.Template.Layout), hv); err != nil {
		return errors.Wrap(err, errors.ErrCodeRender, "failed to render layout")
	}

	width, height := Size(v.Scale)
	fv := frameView{
		View: v,
		FrameStyle: template.CSS(fmt.Sprintf(
			"position: relative; overflow: hidden; width: %dpx; height: %dpx",
			width, height)),
		CanvasStyle: template.CSS(fmt.Sprintf(
			"width: %dpx; height: %dpx; transform: scale(%g); transform-origin: 0 0; background: %s; color: %s",
			CanvasWidth, CanvasHeight, v.Scale, v.Template.Theme.Background, v.Template.Theme.Foreground)),
		Body: template.HTML(body.String()),
	}

	if err := layouts.ExecuteTemplate(w, "frame", fv); err != nil {
		return errors.Wrap(err, errors.ErrCodeRender, "failed to render frame")
	}
	metrics.SlidesRendered.WithLabelValues("html").Inc()
	return nil
}

// HTMLString is HTML returning the markup as template.HTML, ready to be
// embedded in a page template.
func HTMLString(c slides.Canvas, image string, opts Options) (template.HTML, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, c, image, opts); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
