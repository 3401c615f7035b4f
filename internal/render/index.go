package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"github.com/dgallion1/dhalldocs/internal/logfields"
	"github.com/dgallion1/dhalldocs/internal/relpath"
	"golang.org/x/sync/errgroup"
)

// DirectoryIndex is the listing written to one output directory. Pages and
// Subdirs hold base names in sorted order.
type DirectoryIndex struct {
	Dir     string
	Title   string
	Pages   []string
	Subdirs []string
}

// GroupByDir groups page paths by their directory and adds an empty group for
// every ancestor up to root, so each directory on the way to a page gets an
// index. The result is sorted by directory. Subdirs is left empty.
func GroupByDir(root string, pages []string) ([]DirectoryIndex, error) {
	root = filepath.Clean(root)
	res := relpath.NewResolver(root)
	groups := make(map[string][]string)
	for _, p := range pages {
		p = filepath.Clean(p)
		dir := filepath.Dir(p)
		if _, err := res.Resolve(dir); err != nil {
			return nil, err
		}
		groups[dir] = append(groups[dir], filepath.Base(p))
		for d := dir; d != root; {
			d = filepath.Dir(d)
			if _, ok := groups[d]; !ok {
				groups[d] = nil
			}
		}
	}

	dirs := make([]string, 0, len(groups))
	for d := range groups {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	out := make([]DirectoryIndex, 0, len(dirs))
	for _, d := range dirs {
		names := groups[d]
		sort.Strings(names)
		out = append(out, DirectoryIndex{
			Dir:   d,
			Title: indexTitle(root, d),
			Pages: slices.Compact(names),
		})
	}
	return out, nil
}

func indexTitle(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return RootTitle
	}
	return filepath.ToSlash(rel)
}

type indexLink struct {
	Name string
	Href template.URL
}

// segmentHref links to name inside the current directory. The name is
// escaped as a single path segment so that #, ? and % stay part of it.
func segmentHref(name string, rest ...string) template.URL {
	href := "./" + url.PathEscape(name)
	for _, r := range rest {
		href += "/" + url.PathEscape(r)
	}
	return template.URL(href)
}

type indexData struct {
	PackageName string
	Title       string
	Resources   string
	Stylesheet  string
	Crumbs      []relpath.Crumb
	Subdirs     []indexLink
	Pages       []indexLink
}

// BuildIndexes writes an index.html into every directory that holds a page or
// leads to one. It returns the written index paths in sorted order.
func (s *Site) BuildIndexes(ctx context.Context, pages []string, workers int) ([]string, error) {
	indexes, err := GroupByDir(s.OutputRoot, pages)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// Every index directory exists before any listing is read.
	hasIndex := make(map[string]bool, len(indexes))
	for _, idx := range indexes {
		if err := os.MkdirAll(idx.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		hasIndex[idx.Dir] = true
	}
	for i := range indexes {
		idx := &indexes[i]
		if slices.Contains(idx.Pages, IndexName) {
			s.logger().Warn("page is overwritten by the directory index", logfields.Path(filepath.Join(idx.Dir, IndexName)))
			idx.Pages = slices.DeleteFunc(idx.Pages, func(n string) bool { return n == IndexName })
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range indexes {
		idx := &indexes[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			subdirs, err := listSubdirs(idx.Dir, hasIndex)
			if err != nil {
				return err
			}
			idx.Subdirs = subdirs
			return s.writeIndex(*idx)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	written := make([]string, len(indexes))
	for i, idx := range indexes {
		written[i] = filepath.Join(idx.Dir, IndexName)
	}
	sort.Strings(written)
	s.logger().Debug("directory indexes written", logfields.Count(len(written)))
	return written, nil
}

// listSubdirs returns the immediate subdirectories of dir that get an index
// of their own.
func listSubdirs(dir string, hasIndex map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && hasIndex[filepath.Join(dir, e.Name())] {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

func (s *Site) writeIndex(idx DirectoryIndex) error {
	res := s.resolver()
	resources, err := res.Resolve(idx.Dir)
	if err != nil {
		return err
	}
	crumbs, err := res.Breadcrumbs(idx.Dir, s.PackageName, IndexName)
	if err != nil {
		return err
	}

	data := indexData{
		PackageName: s.PackageName,
		Title:       idx.Title,
		Resources:   resources,
		Stylesheet:  StylesheetName,
		Crumbs:      crumbs,
	}
	for _, name := range idx.Subdirs {
		data.Subdirs = append(data.Subdirs, indexLink{Name: name + "/", Href: segmentHref(name, IndexName)})
	}
	for _, name := range idx.Pages {
		data.Pages = append(data.Pages, indexLink{Name: strings.TrimSuffix(name, PageExt), Href: segmentHref(name)})
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.tmpl", data); err != nil {
		return fmt.Errorf("execute index template: %w", err)
	}
	if err := os.WriteFile(filepath.Join(idx.Dir, IndexName), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
