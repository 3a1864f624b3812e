package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIsContiguous(t *testing.T) {
	all := All()
	require.Len(t, all, slides.MaxTemplateID)
	for i, tpl := range all {
		assert.Equal(t, i+1, tpl.ID)
		assert.Equal(t, slides.TemplateKey(i+1), tpl.Key())
		assert.NotEmpty(t, tpl.Name)
		assert.NotNil(t, tpl.Defaults)
	}
}

func TestQuestionTemplateIsReserved(t *testing.T) {
	tpl, err := Lookup(slides.QuestionTemplateID)
	require.NoError(t, err)
	assert.True(t, tpl.QuestionOnly())

	for _, g := range Gallery() {
		assert.False(t, g.QuestionOnly(), "template %s", g.Key())
	}
	assert.Len(t, Gallery(), slides.MaxTemplateID-1)
	// Gallery must not disturb All
	assert.Len(t, All(), slides.MaxTemplateID)
}

func TestLookupUnknown(t *testing.T) {
	for _, id := range []int{0, -1, 55, 100} {
		_, err := Lookup(id)
		assert.True(t, errors.Is(err, errors.ErrCodeTemplateNotFound), "id %d", id)
	}
}

func TestResolvePrefersSlideFields(t *testing.T) {
	tpl, _ := Lookup(2)
	got := tpl.Resolve(slides.Fields{"title": "Água"})
	assert.Equal(t, "Água", got["title"])
	assert.Equal(t, "Disciplina • Turma", got["subtitle"])

	got = tpl.Resolve(slides.Fields{"subtitle": ""})
	assert.Equal(t, "", got["subtitle"])
}

func TestHTMLEscapesFieldValues(t *testing.T) {
	c := slides.Canvas{TemplateID: 8, Fields: slides.Fields{
		"title": `Aspas "duplas" e <script>alert(1)</script>`,
		"items": []any{"luz", `a "b"`},
	}}

	out, err := HTMLString(c, "", Options{})
	require.NoError(t, err)

	s := string(out)
	assert.NotContains(t, s, "<script>")
	assert.Contains(t, s, "&lt;script&gt;")
	assert.Contains(t, s, "&#34;duplas&#34;")
	assert.Contains(t, s, `data-template="08"`)
	assert.Contains(t, s, "<li>luz</li>")
}

func TestHTMLPreviewScale(t *testing.T) {
	c := slides.Canvas{TemplateID: 1, Fields: slides.Fields{"title": "T"}}

	preview, err := HTMLString(c, "", Options{Preview: true, Scale: 2})
	require.NoError(t, err)
	assert.Contains(t, string(preview), "scale(0.3)")
	assert.Contains(t, string(preview), "width: 276px; height: 155px")

	full, err := HTMLString(c, "", Options{})
	require.NoError(t, err)
	assert.Contains(t, string(full), "scale(1)")

	half, err := HTMLString(c, "", Options{Scale: Fit(460, 259)})
	require.NoError(t, err)
	assert.Contains(t, string(half), "scale(0.5)")
	assert.Contains(t, string(half), "width: 460px; height: 259px")
}

func TestHTMLEveryTemplateRenders(t *testing.T) {
	for _, tpl := range All() {
		out, err := HTMLString(slides.Canvas{TemplateID: tpl.ID, Fields: slides.Fields{}}, "", Options{Preview: true})
		require.NoError(t, err, "template %s", tpl.Key())
		assert.True(t, strings.Contains(string(out), "layout-"+string(tpl.Layout)), "template %s", tpl.Key())
	}
}

func TestHTMLQuestionMarksCorrectOption(t *testing.T) {
	c := slides.Canvas{TemplateID: 54, Fields: slides.Fields{
		"statement":      "Qual gás as plantas absorvem?",
		"options":        []any{"Oxigênio", "Gás carbônico"},
		"correct_answer": float64(1),
	}}
	out, err := HTMLString(c, "", Options{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `<li data-correct="true"><b>B)</b> Gás carbônico</li>`)
}

func TestHTMLUnknownTemplate(t *testing.T) {
	_, err := HTMLString(slides.Canvas{TemplateID: 99}, "", Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeTemplateNotFound))
}

func TestPNGSizes(t *testing.T) {
	r, err := NewImageRenderer("", 0)
	require.NoError(t, err)

	c := slides.Canvas{TemplateID: 12, Fields: slides.Fields{"title": "Resumo", "items": []any{"a", "b"}}}

	full, err := r.PNG(c, "", Options{})
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(full))
	require.NoError(t, err)
	assert.Equal(t, CanvasWidth, img.Bounds().Dx())
	assert.Equal(t, CanvasHeight, img.Bounds().Dy())

	thumb, err := r.PNG(c, "", Options{Preview: true})
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 276, img.Bounds().Dx())
	assert.Equal(t, 155, img.Bounds().Dy())
}

func TestScaleIsClamped(t *testing.T) {
	r, err := NewImageRenderer("", 0)
	require.NoError(t, err)
	c := slides.Canvas{TemplateID: 1}

	big, err := r.PNG(c, "", Options{Scale: Fit(9200, 5180)})
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(big))
	require.NoError(t, err)
	w, h := Size(MaxScale)
	assert.Equal(t, w, img.Bounds().Dx())
	assert.Equal(t, h, img.Bounds().Dy())

	out, err := HTMLString(c, "", Options{Scale: 50})
	require.NoError(t, err)
	assert.Contains(t, string(out), "scale(2)")
}

func TestPNGEveryLayout(t *testing.T) {
	r, err := NewImageRenderer("", 0)
	require.NoError(t, err)
	for _, tpl := range All() {
		_, err := r.PNG(slides.Canvas{TemplateID: tpl.ID}, "", Options{Preview: true})
		assert.NoError(t, err, "template %s", tpl.Key())
	}
}

func TestNewImageRendererMissingFont(t *testing.T) {
	_, err := NewImageRenderer("/nonexistent/font.ttf", 20)
	assert.True(t, errors.Is(err, errors.ErrCodeRender))
}
