package linkcheck

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Broken is a link whose target does not exist.
type Broken struct {
	Page   string // HTML file containing the link
	URL    string // link as written
	Target string // resolved filesystem path, empty when unresolvable
	Reason string
}

func (b Broken) String() string {
	return fmt.Sprintf("%s: %s (%s)", b.Page, b.URL, b.Reason)
}

// Check scans every .html file under root and reports relative links that do
// not resolve to a file inside root. Links with a scheme or host, pure
// fragments and queries are not checked. A link to a directory resolves to
// its index.html. The result is sorted by page, then URL.
func Check(root string) ([]Broken, error) {
	root = filepath.Clean(root)
	var broken []Broken
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		found, err := checkPage(root, path)
		if err != nil {
			return err
		}
		broken = append(broken, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check links in %s: %w", root, err)
	}
	sort.Slice(broken, func(i, j int) bool {
		if broken[i].Page != broken[j].Page {
			return broken[i].Page < broken[j].Page
		}
		return broken[i].URL < broken[j].URL
	})
	return broken, nil
}

func checkPage(root, page string) ([]Broken, error) {
	f, err := os.Open(page)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	links, err := ExtractLinks(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", page, err)
	}

	var out []Broken
	for _, l := range links {
		target, reason, ok := resolve(root, page, l.URL)
		if ok {
			continue
		}
		out = append(out, Broken{Page: page, URL: l.URL, Target: target, Reason: reason})
	}
	return out, nil
}

// resolve reports whether raw points at an existing file. Unchecked links
// count as resolved.
func resolve(root, page, raw string) (target, reason string, ok bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "malformed url", false
	}
	if u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", "", true
	}

	if strings.HasPrefix(u.Path, "/") {
		target = filepath.Join(root, filepath.FromSlash(u.Path))
	} else {
		target = filepath.Join(filepath.Dir(page), filepath.FromSlash(u.Path))
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return target, "escapes output root", false
	}

	info, err := os.Stat(target)
	if err != nil {
		return target, "not found", false
	}
	if info.IsDir() {
		target = filepath.Join(target, "index.html")
		if _, err := os.Stat(target); err != nil {
			return target, "directory has no index.html", false
		}
	}
	return target, "", true
}
