package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/ChaseRain/lessonslides/internal/infra/metrics"
	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

const (
	margin      = 48.0
	lineSpacing = 1.4
)

// ImageRenderer draws canvases to PNG. Without a font file it falls back to
// gg's built-in bitmap face, which is legible but small. Truetype faces
// cache glyphs, so drawing is serialized.
type ImageRenderer struct {
	mu        sync.Mutex
	titleFace font.Face
	bodyFace  font.Face
}

func NewImageRenderer(fontPath string, size float64) (*ImageRenderer, error) {
	r := &ImageRenderer{}
	if strings.TrimSpace(fontPath) == "" {
		return r, nil
	}
	if size <= 0 {
		size = 28
	}

	title, err := loadFontFace(fontPath, size*1.5)
	if err != nil {
		return nil, err
	}
	body, err := loadFontFace(fontPath, size)
	if err != nil {
		return nil, err
	}
	r.titleFace, r.bodyFace = title, body
	return r, nil
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "failed to read font file")
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "failed to parse TTF")
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// PNG draws canvas c at full canvas size, then scales the result down when
// opts asks for a smaller rendition.
func (r *ImageRenderer) PNG(c slides.Canvas, imageURL string, opts Options) ([]byte, error) {
	v, err := newView(c, imageURL, opts)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(CanvasWidth, CanvasHeight)
	r.mu.Lock()
	r.draw(dc, v)
	r.mu.Unlock()

	var img image.Image = dc.Image()
	if v.Scale != 1 {
		w, h := Size(v.Scale)
		if w < 1 || h < 1 {
			return nil, errors.New(errors.ErrCodeRender, fmt.Sprintf("scale %g too small", v.Scale))
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRender, "failed to encode PNG")
	}
	metrics.SlidesRendered.WithLabelValues("png").Inc()
	return buf.Bytes(), nil
}

func (r *ImageRenderer) setFace(dc *gg.Context, title bool) {
	switch {
	case title && r.titleFace != nil:
		dc.SetFontFace(r.titleFace)
	case !title && r.bodyFace != nil:
		dc.SetFontFace(r.bodyFace)
	}
}

func (r *ImageRenderer) draw(dc *gg.Context, v view) {
	theme := v.Template.Theme
	dc.SetHexColor(theme.Background)
	dc.Clear()

	dc.SetHexColor(theme.Accent)
	dc.DrawRectangle(0, 0, CanvasWidth, 8)
	dc.Fill()

	width := CanvasWidth - 2*margin

	switch v.Template.Layout {
	case LayoutCover, LayoutClosing:
		r.text(dc, theme.Foreground, true, v.Title, CanvasWidth/2, CanvasHeight/2-30, 0.5, width, gg.AlignCenter)
		sub := v.Subtitle
		if v.Template.Layout == LayoutClosing {
			sub = v.Text
		}
		r.text(dc, theme.Accent, false, sub, CanvasWidth/2, CanvasHeight/2+40, 0.5, width, gg.AlignCenter)

	case LayoutQuote:
		r.text(dc, theme.Foreground, true, "“"+v.Quote+"”", CanvasWidth/2, CanvasHeight/2-20, 0.5, width, gg.AlignCenter)
		r.text(dc, theme.Accent, false, v.Author, CanvasWidth/2, CanvasHeight/2+60, 0.5, width, gg.AlignCenter)

	case LayoutQuestion:
		r.text(dc, theme.Foreground, true, v.Statement, margin, margin+20, 0, width, gg.AlignLeft)
		lines := make([]string, len(v.Options))
		for i, o := range v.Options {
			lines[i] = o.Label + ") " + o.Text
		}
		r.list(dc, theme, lines, margin+120, width)

	default:
		r.text(dc, theme.Foreground, true, v.Title, margin, margin+20, 0, width, gg.AlignLeft)
		r.body(dc, v, width)
	}
}

func (r *ImageRenderer) body(dc *gg.Context, v view, width float64) {
	theme := v.Template.Theme
	top := margin + 110

	switch v.Template.Layout {
	case LayoutAgenda, LayoutBullets, LayoutTimeline:
		r.list(dc, theme, v.Items, top, width)
	case LayoutText, LayoutImage:
		r.text(dc, theme.Foreground, false, v.Text, margin, top, 0, width, gg.AlignLeft)
	case LayoutTwoColumn:
		half := (width - margin) / 2
		r.text(dc, theme.Foreground, false, v.Left, margin, top, 0, half, gg.AlignLeft)
		r.text(dc, theme.Foreground, false, v.Right, margin*2+half, top, 0, half, gg.AlignLeft)
	case LayoutComparison:
		half := (width - margin) / 2
		r.text(dc, theme.Accent, false, v.LeftTitle, margin, top, 0, half, gg.AlignLeft)
		r.text(dc, theme.Accent, false, v.RightTitle, margin*2+half, top, 0, half, gg.AlignLeft)
		r.text(dc, theme.Foreground, false, strings.Join(v.LeftItems, "\n"), margin, top+50, 0, half, gg.AlignLeft)
		r.text(dc, theme.Foreground, false, strings.Join(v.RightItems, "\n"), margin*2+half, top+50, 0, half, gg.AlignLeft)
	case LayoutHighlight:
		r.text(dc, theme.Accent, true, v.Value, CanvasWidth/2, top+60, 0.5, width, gg.AlignCenter)
		r.text(dc, theme.Foreground, false, v.Caption, CanvasWidth/2, top+140, 0.5, width, gg.AlignCenter)
	}
}

func (r *ImageRenderer) list(dc *gg.Context, theme Theme, lines []string, top, width float64) {
	y := top
	for _, line := range lines {
		dc.SetHexColor(theme.Accent)
		dc.DrawCircle(margin+6, y+10, 6)
		dc.Fill()
		r.text(dc, theme.Foreground, false, line, margin+28, y, 0, width-28, gg.AlignLeft)
		y += 48
		if y > CanvasHeight-margin {
			return
		}
	}
}

func (r *ImageRenderer) text(dc *gg.Context, color string, title bool, s string, x, y, ax, width float64, align gg.Align) {
	if s == "" {
		return
	}
	r.setFace(dc, title)
	dc.SetHexColor(color)
	dc.DrawStringWrapped(s, x, y, ax, 0, width, lineSpacing, align)
}
