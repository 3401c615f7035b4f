package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/dgallion1/dhalldocs/internal/doctree"
	"github.com/dgallion1/dhalldocs/internal/header"
	"github.com/dgallion1/dhalldocs/internal/logfields"
	"github.com/dgallion1/dhalldocs/internal/relpath"
)

// PageResult describes one written page.
type PageResult struct {
	Path     string
	Fallback bool // header was emitted as plain text because markdown failed
}

type pageData struct {
	PackageName string
	Title       string
	Name        string
	Resources   string
	Stylesheet  string
	Crumbs      []relpath.Crumb
	Body        template.HTML
	Plain       string
	Fallback    bool
	Source      string
	Lines       int
}

// RenderPage writes the page for one parsed source file. A header that fails
// to render as markdown is emitted as escaped plain text instead; only
// filesystem and template failures are returned.
func (s *Site) RenderPage(entry doctree.Entry) (PageResult, error) {
	out, err := s.OutputPath(entry.Path)
	if err != nil {
		return PageResult{}, err
	}
	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return PageResult{}, fmt.Errorf("create output directory: %w", err)
	}

	res := s.resolver()
	resources, err := res.Resolve(dir)
	if err != nil {
		return PageResult{}, err
	}
	crumbs, err := res.Breadcrumbs(dir, s.PackageName, IndexName)
	if err != nil {
		return PageResult{}, err
	}

	rel, _ := filepath.Rel(s.PackageRoot, entry.Path)
	data := pageData{
		PackageName: s.PackageName,
		Title:       filepath.ToSlash(rel),
		Name:        filepath.Base(entry.Path),
		Resources:   resources,
		Stylesheet:  StylesheetName,
		Crumbs:      crumbs,
		Source:      entry.Doc.Body,
		Lines:       entry.Doc.Lines,
	}

	text := header.Normalize(entry.Header)
	body, err := s.markdown().Render(text)
	if err != nil {
		s.logger().Warn("markdown rendering failed, using plain text", logfields.Path(entry.Path), logfields.Error(err))
		data.Fallback = true
		data.Plain = text
	} else {
		data.Body = body
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page.tmpl", data); err != nil {
		return PageResult{}, fmt.Errorf("execute page template: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return PageResult{}, fmt.Errorf("write page: %w", err)
	}
	return PageResult{Path: out, Fallback: data.Fallback}, nil
}
