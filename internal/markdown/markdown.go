package markdown

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer converts header prose into HTML markup.
type Renderer interface {
	Render(text string) (template.HTML, error)
}

// Goldmark renders CommonMark plus GitHub extensions. Raw HTML in the
// input is omitted from the output.
type Goldmark struct {
	md goldmark.Markdown
}

func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

func (g *Goldmark) Render(text string) (template.HTML, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Func adapts a plain function to Renderer.
type Func func(text string) (template.HTML, error)

func (f Func) Render(text string) (template.HTML, error) {
	return f(text)
}
