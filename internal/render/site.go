// Package render writes the HTML pages, directory indexes and stylesheet of
// a generated documentation tree.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/dhalldocs/internal/markdown"
	"github.com/dgallion1/dhalldocs/internal/relpath"
)

const (
	PageExt        = ".html"
	IndexName      = "index.html"
	StylesheetName = "index.css"
	RootTitle      = "package"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.tmpl"))

// Site carries everything one generation run needs to place and link pages.
// Roots are absolute.
type Site struct {
	PackageRoot string
	OutputRoot  string
	PackageName string
	Markdown    markdown.Renderer
	Log         *slog.Logger
}

func NewSite(packageRoot, outputRoot, packageName string, md markdown.Renderer, log *slog.Logger) *Site {
	if log == nil {
		log = slog.Default()
	}
	if md == nil {
		md = markdown.NewGoldmark()
	}
	return &Site{
		PackageRoot: filepath.Clean(packageRoot),
		OutputRoot:  filepath.Clean(outputRoot),
		PackageName: packageName,
		Markdown:    md,
		Log:         log,
	}
}

// OutputPath maps a source file to its page: the package root is replaced by
// the output root and ".html" is appended to the file name.
func (s *Site) OutputPath(sourcePath string) (string, error) {
	rel, err := filepath.Rel(s.PackageRoot, filepath.Clean(sourcePath))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("source %s is outside package root %s", sourcePath, s.PackageRoot)
	}
	return filepath.Join(s.OutputRoot, rel+PageExt), nil
}

func (s *Site) resolver() *relpath.Resolver {
	return relpath.NewResolver(s.OutputRoot)
}

func (s *Site) markdown() markdown.Renderer {
	if s.Markdown == nil {
		return markdown.NewGoldmark()
	}
	return s.Markdown
}

func (s *Site) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
