package render

import (
	"fmt"
	"math"

	"github.com/ChaseRain/lessonslides/internal/slides"
)

// Options controls how a canvas is drawn.
type Options struct {
	// Preview shrinks the slide to PreviewScale for galleries and overviews.
	Preview bool
	// Scale applies when Preview is false. Zero means 1; values above
	// MaxScale are clamped.
	Scale float64
}

func (o Options) effectiveScale() float64 {
	if o.Preview {
		return PreviewScale
	}
	if o.Scale <= 0 {
		return 1
	}
	return math.Min(o.Scale, MaxScale)
}

type option struct {
	Label   string
	Text    string
	Correct bool
}

// view is the flat, typed projection of a template's fields that every
// layout renders from.
type view struct {
	Template Template
	Scale    float64

	Title      string
	Subtitle   string
	Text       string
	Items      []string
	Left       string
	Right      string
	LeftTitle  string
	LeftItems  []string
	RightTitle string
	RightItems []string
	Quote      string
	Author     string
	Value      string
	Caption    string
	Image      string
	Statement  string
	Options    []option
}

func newView(c slides.Canvas, image string, opts Options) (view, error) {
	t, err := Lookup(c.TemplateID)
	if err != nil {
		return view{}, err
	}
	f := t.Resolve(c.Fields)

	v := view{
		Template:   t,
		Scale:      opts.effectiveScale(),
		Title:      f.String("title"),
		Subtitle:   f.String("subtitle"),
		Text:       f.String("text"),
		Items:      f.Strings("items"),
		Left:       f.String("left"),
		Right:      f.String("right"),
		LeftTitle:  f.String("leftTitle"),
		LeftItems:  f.Strings("leftItems"),
		RightTitle: f.String("rightTitle"),
		RightItems: f.Strings("rightItems"),
		Quote:      f.String("quote"),
		Author:     f.String("author"),
		Value:      f.String("value"),
		Caption:    f.String("caption"),
		Image:      f.String("image"),
		Statement:  f.String("statement"),
	}
	if v.Image == "" {
		v.Image = image
	}

	correct := intField(f["correct_answer"])
	for i, o := range f.Strings("options") {
		v.Options = append(v.Options, option{
			Label:   string(rune('A' + i)),
			Text:    o,
			Correct: i == correct,
		})
	}
	return v, nil
}

func intField(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err == nil {
			return i
		}
	}
	return -1
}
