package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/dgallion1/dhalldocs/internal/doctree"
	"github.com/dgallion1/dhalldocs/internal/logfields"
	"github.com/dgallion1/dhalldocs/internal/parser"
	"golang.org/x/sync/errgroup"
)

// Walker finds the source files under a package root.
type Walker struct {
	Parser  parser.Parser
	Filter  Filter   // nil passes everything
	Exclude []string // absolute directories that are never descended
	Workers int      // parse concurrency; <= 0 means GOMAXPROCS
	Log     *slog.Logger
}

// Skip records a file that was read but did not parse.
type Skip struct {
	Path string
	Err  error
}

// Result is the outcome of one discovery pass. Entries are in walk order,
// which callers must not rely on.
type Result struct {
	Entries []doctree.Entry
	Skipped []Skip
}

// Discover walks root and parses every candidate file. Files that fail to
// parse are logged and skipped; failing to walk or read is fatal.
func (w *Walker) Discover(ctx context.Context, root string) (*Result, error) {
	log := w.Log
	if log == nil {
		log = slog.Default()
	}
	root = filepath.Clean(root)

	candidates, err := w.candidates(root)
	if err != nil {
		return nil, err
	}
	log.Debug("candidate files", logfields.Path(root), logfields.Count(len(candidates)))

	workers := w.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	entries := make([]*doctree.Entry, len(candidates))
	skips := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			parsed, err := w.Parser.Parse(path, src)
			if err != nil {
				log.Warn("skipping file that does not parse", logfields.Path(path), logfields.Error(err))
				skips[i] = err
				return nil
			}
			entries[i] = &doctree.Entry{Path: path, Header: parsed.Header, Doc: parsed.Doc}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{}
	for i, e := range entries {
		switch {
		case e != nil:
			res.Entries = append(res.Entries, *e)
		case skips[i] != nil:
			res.Skipped = append(res.Skipped, Skip{Path: candidates[i], Err: skips[i]})
		}
	}
	return res, nil
}

// candidates lists the regular files under root that pass the filter.
func (w *Walker) candidates(root string) ([]string, error) {
	filter := w.Filter
	if filter == nil {
		filter = AcceptAll
	}
	excluded := make(map[string]bool, len(w.Exclude))
	for _, dir := range w.Exclude {
		excluded[filepath.Clean(dir)] = true
	}

	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() && excluded[path] {
			return fs.SkipDir
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if !filter(filepath.ToSlash(rel), d) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}
