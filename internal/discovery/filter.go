package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Filter is the cheap candidate test applied before parsing. rel is
// slash-separated and relative to the package root. Returning false for a
// directory skips the whole subtree. A filter never decides inclusion on its
// own: files that pass are still parsed, and only those that parse are kept.
type Filter func(rel string, d fs.DirEntry) bool

// AcceptAll passes every path.
func AcceptAll(string, fs.DirEntry) bool { return true }

// All passes a path only if every filter does.
func All(filters ...Filter) Filter {
	return func(rel string, d fs.DirEntry) bool {
		for _, f := range filters {
			if f != nil && !f(rel, d) {
				return false
			}
		}
		return true
	}
}

// Extensions passes directories and files whose extension is in exts.
// Matching is case-insensitive and the leading dot is optional. With no
// extensions every path passes.
func Extensions(exts ...string) Filter {
	if len(exts) == 0 {
		return AcceptAll
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return func(rel string, d fs.DirEntry) bool {
		if d.IsDir() {
			return true
		}
		return set[strings.ToLower(path.Ext(rel))]
	}
}

// IgnoreFileName is read from the package root alongside .gitignore.
const IgnoreFileName = ".dhalldocsignore"

var defaultIgnorePatterns = []string{
	"*.swp",
	"*~",
	"*.png",
	"*.jpg",
	"*.gif",
	"*.pdf",
	"*.zip",
	"*.tar",
	"*.gz",
}

// Ignore skips dot-files, paths matched by .gitignore or .dhalldocsignore in
// root, and common binary and editor artifacts.
func Ignore(root string) (Filter, error) {
	patterns := append([]string(nil), defaultIgnorePatterns...)
	for _, name := range []string{".gitignore", IgnoreFileName} {
		lines, err := readIgnoreFile(filepath.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		patterns = append(patterns, lines...)
	}
	matcher := gitignore.CompileIgnoreLines(patterns...)

	return func(rel string, d fs.DirEntry) bool {
		if enry.IsDotFile(rel) {
			return false
		}
		if matcher.MatchesPath(rel) {
			return false
		}
		if d.IsDir() && matcher.MatchesPath(rel+"/") {
			return false
		}
		return true
	}, nil
}

func readIgnoreFile(p string) ([]string, error) {
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}
