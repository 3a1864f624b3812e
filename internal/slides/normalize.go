package slides

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultTemplateID  = 1
	QuestionTemplateID = 54
	MaxTemplateID      = 54

	keyTemplateID      = "templateID"
	keyTemplateContent = "templateContent"
)

// Normalize maps any slide to a canvas record. It never fails: a slide
// without a template falls back to template 1 showing only its title.
func Normalize(index int, s Slide) NormalizedSlide {
	id := DefaultTemplateID
	if raw, ok := s.Content[keyTemplateID]; ok && raw != nil {
		if parsed, ok := parseTemplateID(raw); ok {
			id = parsed
		}
	}

	var fields Fields
	switch tc := s.Content[keyTemplateContent].(type) {
	case map[string]any:
		fields = Fields(tc).Clone()
	case Fields:
		fields = tc.Clone()
	}
	if fields == nil {
		fields = Fields{"title": s.Title}
	}

	return NormalizedSlide{
		ID:   index,
		Type: s.Type,
		Canvas: Canvas{
			TemplateID: id,
			Fields:     fields,
		},
		Image:    s.Image,
		Question: s.Question,
	}
}

// Slide converts a normalized slide back to the wire shape, with the canvas
// stored under content.templateID / content.templateContent.
func (n NormalizedSlide) Slide() Slide {
	return Slide{
		Type:  n.Type,
		Title: n.Canvas.Fields.String("title"),
		Content: Fields{
			keyTemplateID:      n.Canvas.TemplateID,
			keyTemplateContent: map[string]any(n.Canvas.Fields.Clone()),
		},
		Image:    n.Image,
		Question: n.Question,
	}
}

// TemplateKey zero-pads a template id to the registry key form ("07").
func TemplateKey(id int) string {
	return fmt.Sprintf("%02d", id)
}

func parseTemplateID(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}
