// Package slides holds the wire model shared with the generation API and the
// normalized canvas model the renderer consumes.
package slides

type SlideType string

const (
	TypeTitle      SlideType = "title"
	TypeAgenda     SlideType = "agenda"
	TypeContent    SlideType = "content"
	TypeConclusion SlideType = "conclusion"
	// TypeQuestion marks slides synthesized locally when a question is
	// promoted to its own slide. The API never sends it.
	TypeQuestion SlideType = "question"
)

// Fields is a template's free-form field bag.
type Fields map[string]any

// Clone returns a shallow copy; nil stays nil.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// String returns the string value stored at key, or "".
func (f Fields) String(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// Strings returns the value at key as a string list. A single string becomes
// a one-element list.
func (f Fields) Strings(key string) []string {
	switch v := f[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Slide is one unit of generated content as the API sends it.
type Slide struct {
	Type     SlideType `json:"type"`
	Title    string    `json:"title"`
	Content  Fields    `json:"content"`
	Image    string    `json:"image,omitempty"`
	Question *Question `json:"question,omitempty"`
}

// Question is the optional multiple-choice question attached to a content slide.
type Question struct {
	Statement     string   `json:"statement"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	SlideNumber   *int     `json:"slide_number,omitempty"`
}

// Canvas is what a template renders: a template id and its fields.
type Canvas struct {
	TemplateID int    `json:"templateID"`
	Fields     Fields `json:"generationTemplate"`
}

// NormalizedSlide is a slide as held by a deck. ID is the slide's current
// position and changes whenever slides are inserted or removed.
type NormalizedSlide struct {
	ID       int       `json:"id"`
	Type     SlideType `json:"type,omitempty"`
	Canvas   Canvas    `json:"canvas"`
	Image    string    `json:"image,omitempty"`
	Question *Question `json:"question,omitempty"`
}
