package linkcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractLinks(t *testing.T) {
	doc := `<!DOCTYPE html><html><head>
<link rel="stylesheet" href="../index.css">
<script src="app.js"></script>
</head><body>
<a href="index.html">Home <b>page</b></a>
<a name="anchor-only">no href</a>
<img src="pic.png" alt="pic">
</body></html>`

	links, err := ExtractLinks(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []Link{
		{URL: "../index.css", Tag: "link", Attribute: "href"},
		{URL: "app.js", Tag: "script", Attribute: "src"},
		{URL: "index.html", Text: "Homepage", Tag: "a", Attribute: "href"},
		{URL: "pic.png", Tag: "img", Attribute: "src"},
	}, links)
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestCheck_Clean(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.css":       "",
		"index.html":      `<link href="index.css"><a href="./List/index.html">List/</a><a href="List">dir</a>`,
		"List/index.html": `<link href="../index.css"><a href="../index.html">up</a><a href="./map.html#top">map</a>`,
		"List/map.html":   `<a href="https://dhall-lang.org">ext</a><a href="#frag">f</a><a href="mailto:x@y">m</a><a href="?q=1">q</a>`,
		"List/a b.html":   `<a href="/List/a%20b.html">self</a>`,
		"notes.txt":       `<a href="missing.html">ignored</a>`,
	})

	broken, err := Check(root)
	require.NoError(t, err)
	assert.Empty(t, broken)
}

func TestCheck_ReportsBrokenLinks(t *testing.T) {
	root := writeTree(t, map[string]string{
		"index.html":        `<a href="gone.html">x</a><link href="index.css"><a href="Empty/">e</a>`,
		"Empty/keep":        "",
		"deep/x/index.html": `<a href="../../../outside.html">out</a>`,
	})

	broken, err := Check(root)
	require.NoError(t, err)
	require.Len(t, broken, 4)

	assert.Equal(t, filepath.Join(root, "deep", "x", "index.html"), broken[0].Page)
	assert.Equal(t, "escapes output root", broken[0].Reason)

	assert.Equal(t, "Empty/", broken[1].URL)
	assert.Equal(t, "directory has no index.html", broken[1].Reason)
	assert.Equal(t, "gone.html", broken[2].URL)
	assert.Equal(t, filepath.Join(root, "gone.html"), broken[2].Target)
	assert.Equal(t, "index.css", broken[3].URL)
	assert.Equal(t, "not found", broken[3].Reason)
	assert.Contains(t, broken[3].String(), "index.css (not found)")
}

func TestCheck_MissingRoot(t *testing.T) {
	_, err := Check(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
