// Package relpath computes the relative prefixes pages use to reach files at
// the root of the output tree.
package relpath

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a directory does not lie under the root.
var ErrOutsideRoot = errors.New("directory is outside the output root")

// Resolver answers prefix queries against a fixed root.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: filepath.Clean(root)}
}

// Root returns the cleaned root directory.
func (r *Resolver) Root() string { return r.root }

// Resolve returns "../" once per directory level between dir and the root,
// and "" when dir is the root itself.
func (r *Resolver) Resolve(dir string) (string, error) {
	segs, err := r.segments(dir)
	if err != nil {
		return "", err
	}
	return strings.Repeat("../", len(segs)), nil
}

// Resolve is a one-shot form of Resolver.Resolve.
func Resolve(root, dir string) (string, error) {
	return NewResolver(root).Resolve(dir)
}

// Crumb is one navigation step from the root down to a directory.
type Crumb struct {
	Name string
	Href string
}

// Breadcrumbs returns one crumb per directory from the root down to dir,
// each linking to that directory's index page relative to dir. The first
// crumb is the root and is labelled rootName. Hrefs hold only "../" steps
// and the escaped index name, never directory names.
func (r *Resolver) Breadcrumbs(dir, rootName, indexName string) ([]Crumb, error) {
	segs, err := r.segments(dir)
	if err != nil {
		return nil, err
	}
	indexName = url.PathEscape(indexName)
	crumbs := make([]Crumb, 0, len(segs)+1)
	crumbs = append(crumbs, Crumb{
		Name: rootName,
		Href: strings.Repeat("../", len(segs)) + indexName,
	})
	for i, seg := range segs {
		crumbs = append(crumbs, Crumb{
			Name: seg,
			Href: strings.Repeat("../", len(segs)-i-1) + indexName,
		})
	}
	return crumbs, nil
}

func (r *Resolver) segments(dir string) ([]string, error) {
	rel, err := filepath.Rel(r.root, filepath.Clean(dir))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, ErrOutsideRoot)
	}
	if rel == "." {
		return nil, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("resolve %s: %w", dir, ErrOutsideRoot)
	}
	return strings.Split(rel, string(filepath.Separator)), nil
}
