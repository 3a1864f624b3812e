// Package render resolves canvas records to templates and draws them, as
// HTML for the browser and as PNG for thumbnails and exports.
package render

import (
	"sort"

	"github.com/ChaseRain/lessonslides/internal/slides"
	"github.com/ChaseRain/lessonslides/pkg/errors"
)

// Layout is the family a template belongs to. Each layout has one render
// function per output format; templates differ by theme and defaults.
type Layout string

const (
	LayoutCover      Layout = "cover"
	LayoutAgenda     Layout = "agenda"
	LayoutBullets    Layout = "bullets"
	LayoutText       Layout = "text"
	LayoutTwoColumn  Layout = "two-column"
	LayoutImage      Layout = "image"
	LayoutQuote      Layout = "quote"
	LayoutTimeline   Layout = "timeline"
	LayoutComparison Layout = "comparison"
	LayoutHighlight  Layout = "highlight"
	LayoutClosing    Layout = "closing"
	LayoutQuestion   Layout = "question"
)

type Theme struct {
	Name       string
	Background string
	Foreground string
	Accent     string
}

var (
	themeOcean  = Theme{Name: "ocean", Background: "#0f2d4a", Foreground: "#f4f8fb", Accent: "#3fb6e8"}
	themeLeaf   = Theme{Name: "leaf", Background: "#f3faf1", Foreground: "#1d3b1a", Accent: "#4caf50"}
	themeSun    = Theme{Name: "sun", Background: "#fff8e6", Foreground: "#3d2c00", Accent: "#f5a623"}
	themeChalk  = Theme{Name: "chalk", Background: "#263238", Foreground: "#eceff1", Accent: "#ffd54f"}
	themePaper  = Theme{Name: "paper", Background: "#ffffff", Foreground: "#212121", Accent: "#7e57c2"}
	themeCoral  = Theme{Name: "coral", Background: "#fff1ee", Foreground: "#4a1c14", Accent: "#ff7043"}
	themeNight  = Theme{Name: "night", Background: "#121212", Foreground: "#fafafa", Accent: "#26c6da"}
	themeCampus = Theme{Name: "campus", Background: "#eef2fb", Foreground: "#1a237e", Accent: "#3949ab"}
)

type Template struct {
	ID       int
	Name     string
	Layout   Layout
	Theme    Theme
	Defaults slides.Fields
}

// Key is the zero-padded registry key, e.g. "07".
func (t Template) Key() string {
	return slides.TemplateKey(t.ID)
}

// QuestionOnly reports whether the template is reserved for promoted
// question slides.
func (t Template) QuestionOnly() bool {
	return t.Layout == LayoutQuestion
}

// Resolve fills fields absent from the slide with the template's defaults.
// The slide's own values always win, even when empty.
func (t Template) Resolve(fields slides.Fields) slides.Fields {
	out := make(slides.Fields, len(t.Defaults)+len(fields))
	for k, v := range t.Defaults {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

type items = []string

var definitions = []Template{
	{ID: 1, Name: "Título simples", Layout: LayoutCover, Theme: themeOcean, Defaults: slides.Fields{"title": "Título da aula", "subtitle": ""}},
	{ID: 2, Name: "Capa com subtítulo", Layout: LayoutCover, Theme: themeCampus, Defaults: slides.Fields{"title": "Título da aula", "subtitle": "Disciplina • Turma"}},
	{ID: 3, Name: "Capa escura", Layout: LayoutCover, Theme: themeNight, Defaults: slides.Fields{"title": "Título", "subtitle": "Subtítulo"}},
	{ID: 4, Name: "Capa quadro-negro", Layout: LayoutCover, Theme: themeChalk, Defaults: slides.Fields{"title": "Aula de hoje", "subtitle": ""}},
	{ID: 5, Name: "Agenda numerada", Layout: LayoutAgenda, Theme: themeCampus, Defaults: slides.Fields{"title": "Agenda", "items": items{"Introdução", "Desenvolvimento", "Conclusão"}}},
	{ID: 6, Name: "Agenda clara", Layout: LayoutAgenda, Theme: themePaper, Defaults: slides.Fields{"title": "O que vamos ver", "items": items{"Tópico 1", "Tópico 2"}}},
	{ID: 7, Name: "Agenda escura", Layout: LayoutAgenda, Theme: themeNight, Defaults: slides.Fields{"title": "Roteiro", "items": items{"Parte 1", "Parte 2", "Parte 3"}}},
	{ID: 8, Name: "Tópicos oceano", Layout: LayoutBullets, Theme: themeOcean, Defaults: slides.Fields{"title": "Tópicos", "items": items{"Primeiro ponto", "Segundo ponto"}}},
	{ID: 9, Name: "Tópicos folha", Layout: LayoutBullets, Theme: themeLeaf, Defaults: slides.Fields{"title": "Pontos principais", "items": items{"Ponto"}}},
	{ID: 10, Name: "Tópicos sol", Layout: LayoutBullets, Theme: themeSun, Defaults: slides.Fields{"title": "Vamos lembrar", "items": items{"Ideia"}}},
	{ID: 11, Name: "Tópicos quadro", Layout: LayoutBullets, Theme: themeChalk, Defaults: slides.Fields{"title": "Anotações", "items": items{"Item"}}},
	{ID: 12, Name: "Tópicos papel", Layout: LayoutBullets, Theme: themePaper, Defaults: slides.Fields{"title": "Resumo", "items": items{"Item 1", "Item 2", "Item 3"}}},
	{ID: 13, Name: "Tópicos coral", Layout: LayoutBullets, Theme: themeCoral, Defaults: slides.Fields{"title": "Destaques", "items": items{"Destaque"}}},
	{ID: 14, Name: "Tópicos campus", Layout: LayoutBullets, Theme: themeCampus, Defaults: slides.Fields{"title": "Conceitos", "items": items{"Conceito"}}},
	{ID: 15, Name: "Texto corrido", Layout: LayoutText, Theme: themePaper, Defaults: slides.Fields{"title": "Explicação", "text": "Escreva aqui o conteúdo."}},
	{ID: 16, Name: "Texto oceano", Layout: LayoutText, Theme: themeOcean, Defaults: slides.Fields{"title": "Contexto", "text": ""}},
	{ID: 17, Name: "Texto folha", Layout: LayoutText, Theme: themeLeaf, Defaults: slides.Fields{"title": "Você sabia?", "text": "Curiosidade sobre o tema."}},
	{ID: 18, Name: "Texto sol", Layout: LayoutText, Theme: themeSun, Defaults: slides.Fields{"title": "Definição", "text": "Definição do conceito."}},
	{ID: 19, Name: "Texto noturno", Layout: LayoutText, Theme: themeNight, Defaults: slides.Fields{"title": "Reflexão", "text": ""}},
	{ID: 20, Name: "Texto campus", Layout: LayoutText, Theme: themeCampus, Defaults: slides.Fields{"title": "Explicação", "text": ""}},
	{ID: 21, Name: "Duas colunas", Layout: LayoutTwoColumn, Theme: themePaper, Defaults: slides.Fields{"title": "Duas ideias", "left": "Coluna da esquerda", "right": "Coluna da direita"}},
	{ID: 22, Name: "Duas colunas oceano", Layout: LayoutTwoColumn, Theme: themeOcean, Defaults: slides.Fields{"title": "Lado a lado", "left": "", "right": ""}},
	{ID: 23, Name: "Duas colunas folha", Layout: LayoutTwoColumn, Theme: themeLeaf, Defaults: slides.Fields{"title": "Causa e efeito", "left": "Causa", "right": "Efeito"}},
	{ID: 24, Name: "Duas colunas quadro", Layout: LayoutTwoColumn, Theme: themeChalk, Defaults: slides.Fields{"title": "Antes e depois", "left": "Antes", "right": "Depois"}},
	{ID: 25, Name: "Imagem à esquerda", Layout: LayoutImage, Theme: themePaper, Defaults: slides.Fields{"title": "Observe", "text": "Descrição da imagem.", "image": ""}},
	{ID: 26, Name: "Imagem oceano", Layout: LayoutImage, Theme: themeOcean, Defaults: slides.Fields{"title": "Imagem", "text": "", "image": ""}},
	{ID: 27, Name: "Imagem folha", Layout: LayoutImage, Theme: themeLeaf, Defaults: slides.Fields{"title": "Na natureza", "text": "", "image": ""}},
	{ID: 28, Name: "Imagem sol", Layout: LayoutImage, Theme: themeSun, Defaults: slides.Fields{"title": "Exemplo", "text": "", "image": ""}},
	{ID: 29, Name: "Imagem noturna", Layout: LayoutImage, Theme: themeNight, Defaults: slides.Fields{"title": "Veja", "text": "", "image": ""}},
	{ID: 30, Name: "Citação", Layout: LayoutQuote, Theme: themePaper, Defaults: slides.Fields{"quote": "Uma frase marcante.", "author": "Autor"}},
	{ID: 31, Name: "Citação escura", Layout: LayoutQuote, Theme: themeNight, Defaults: slides.Fields{"quote": "Uma frase marcante.", "author": ""}},
	{ID: 32, Name: "Citação coral", Layout: LayoutQuote, Theme: themeCoral, Defaults: slides.Fields{"quote": "Pense nisso.", "author": ""}},
	{ID: 33, Name: "Linha do tempo", Layout: LayoutTimeline, Theme: themeCampus, Defaults: slides.Fields{"title": "Linha do tempo", "items": items{"Etapa 1", "Etapa 2", "Etapa 3"}}},
	{ID: 34, Name: "Linha do tempo folha", Layout: LayoutTimeline, Theme: themeLeaf, Defaults: slides.Fields{"title": "Ciclo", "items": items{"Fase 1", "Fase 2"}}},
	{ID: 35, Name: "Passo a passo", Layout: LayoutTimeline, Theme: themeSun, Defaults: slides.Fields{"title": "Passo a passo", "items": items{"Passo 1", "Passo 2", "Passo 3"}}},
	{ID: 36, Name: "Processo oceano", Layout: LayoutTimeline, Theme: themeOcean, Defaults: slides.Fields{"title": "Processo", "items": items{"Entrada", "Transformação", "Saída"}}},
	{ID: 37, Name: "Comparação", Layout: LayoutComparison, Theme: themePaper, Defaults: slides.Fields{"title": "Comparação", "leftTitle": "A", "leftItems": items{}, "rightTitle": "B", "rightItems": items{}}},
	{ID: 38, Name: "Comparação campus", Layout: LayoutComparison, Theme: themeCampus, Defaults: slides.Fields{"title": "Semelhanças e diferenças", "leftTitle": "Semelhanças", "leftItems": items{}, "rightTitle": "Diferenças", "rightItems": items{}}},
	{ID: 39, Name: "Prós e contras", Layout: LayoutComparison, Theme: themeCoral, Defaults: slides.Fields{"title": "Prós e contras", "leftTitle": "Prós", "leftItems": items{}, "rightTitle": "Contras", "rightItems": items{}}},
	{ID: 40, Name: "Comparação quadro", Layout: LayoutComparison, Theme: themeChalk, Defaults: slides.Fields{"title": "Compare", "leftTitle": "", "leftItems": items{}, "rightTitle": "", "rightItems": items{}}},
	{ID: 41, Name: "Número em destaque", Layout: LayoutHighlight, Theme: themeOcean, Defaults: slides.Fields{"title": "Em números", "value": "100%", "caption": "Legenda"}},
	{ID: 42, Name: "Destaque sol", Layout: LayoutHighlight, Theme: themeSun, Defaults: slides.Fields{"title": "Dado curioso", "value": "", "caption": ""}},
	{ID: 43, Name: "Destaque folha", Layout: LayoutHighlight, Theme: themeLeaf, Defaults: slides.Fields{"title": "Importante", "value": "", "caption": ""}},
	{ID: 44, Name: "Destaque noturno", Layout: LayoutHighlight, Theme: themeNight, Defaults: slides.Fields{"title": "Atenção", "value": "!", "caption": ""}},
	{ID: 45, Name: "Destaque coral", Layout: LayoutHighlight, Theme: themeCoral, Defaults: slides.Fields{"title": "Fato", "value": "", "caption": ""}},
	{ID: 46, Name: "Tópicos noturnos", Layout: LayoutBullets, Theme: themeNight, Defaults: slides.Fields{"title": "Revisão", "items": items{"Item"}}},
	{ID: 47, Name: "Atividade", Layout: LayoutBullets, Theme: themeSun, Defaults: slides.Fields{"title": "Atividade", "items": items{"Leia", "Discuta", "Responda"}}},
	{ID: 48, Name: "Glossário", Layout: LayoutTwoColumn, Theme: themeCampus, Defaults: slides.Fields{"title": "Glossário", "left": "Termo", "right": "Significado"}},
	{ID: 49, Name: "Conclusão", Layout: LayoutClosing, Theme: themeOcean, Defaults: slides.Fields{"title": "Conclusão", "text": "O que aprendemos hoje."}},
	{ID: 50, Name: "Conclusão folha", Layout: LayoutClosing, Theme: themeLeaf, Defaults: slides.Fields{"title": "Para fechar", "text": ""}},
	{ID: 51, Name: "Obrigado", Layout: LayoutClosing, Theme: themeNight, Defaults: slides.Fields{"title": "Obrigado!", "text": "Dúvidas?"}},
	{ID: 52, Name: "Resumo final", Layout: LayoutClosing, Theme: themeCampus, Defaults: slides.Fields{"title": "Resumo", "text": ""}},
	{ID: 53, Name: "Próxima aula", Layout: LayoutClosing, Theme: themeSun, Defaults: slides.Fields{"title": "Na próxima aula", "text": ""}},
	{ID: 54, Name: "Pergunta", Layout: LayoutQuestion, Theme: themePaper, Defaults: slides.Fields{"statement": "Pergunta", "options": items{}, "correct_answer": 0}},
}

var registry = func() map[string]Template {
	m := make(map[string]Template, len(definitions))
	for _, t := range definitions {
		m[t.Key()] = t
	}
	return m
}()

// Lookup finds the template for id. Ids outside the registry are an error
// rather than a blank slide.
func Lookup(id int) (Template, error) {
	t, ok := registry[slides.TemplateKey(id)]
	if !ok || id < 1 || id > slides.MaxTemplateID {
		return Template{}, errors.New(errors.ErrCodeTemplateNotFound, "unknown template "+slides.TemplateKey(id))
	}
	return t, nil
}

// All lists every template in numeric id order.
func All() []Template {
	out := make([]Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Gallery lists the templates a user can pick for a content slide.
func Gallery() []Template {
	all := All()
	out := all[:0]
	for _, t := range all {
		if !t.QuestionOnly() {
			out = append(out, t)
		}
	}
	return out
}
