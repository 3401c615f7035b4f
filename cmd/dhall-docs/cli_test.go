package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/dhalldocs/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Prelude")
	require.NoError(t, os.MkdirAll(root, 0o755))
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

var samplePackage = map[string]string{
	"package.dhall": "{- Prelude -}\n{ Bool = ./Bool/not }\n",
	"Bool/not":      "-- Flip a `Bool`\n\\(b : Bool) -> b == False\n",
	".hidden.dhall": "-- hidden\n1\n",
	"notes.txt":     "-- looks like a comment\n2\n",
}

func TestGenerate(t *testing.T) {
	pkg := writePackage(t, samplePackage)
	out := filepath.Join(t.TempDir(), "docs")

	require.NoError(t, run([]string{"generate", "--input", pkg, "--output", out, "--check-links"}))

	for _, rel := range []string{"index.html", "index.css", "package.dhall.html", "Bool/index.html", "Bool/not.html", "notes.txt.html"} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}
	assert.NoFileExists(t, filepath.Join(out, ".hidden.dhall.html"))
}

func TestGenerate_IsDefaultCommand(t *testing.T) {
	pkg := writePackage(t, samplePackage)
	out := filepath.Join(t.TempDir(), "docs")

	require.NoError(t, run([]string{"--input", pkg, "--output", out, "--ext", "dhall", "--no-ignore"}))

	assert.FileExists(t, filepath.Join(out, "package.dhall.html"))
	assert.FileExists(t, filepath.Join(out, ".hidden.dhall.html"))
	assert.NoFileExists(t, filepath.Join(out, "notes.txt.html"))
	assert.NoFileExists(t, filepath.Join(out, "Bool", "not.html"))
}

func TestGenerate_PackageName(t *testing.T) {
	pkg := writePackage(t, samplePackage)
	out := filepath.Join(t.TempDir(), "docs")

	require.NoError(t, run([]string{"generate", "-i", pkg, "-o", out, "--package-name", "dhall-lang"}))

	page, err := os.ReadFile(filepath.Join(out, "Bool", "not.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `<a href="../index.html">dhall-lang</a>`)
}

func TestGenerate_EmptyPackageSucceeds(t *testing.T) {
	pkg := writePackage(t, map[string]string{"README": "not; dhall\n"})
	out := filepath.Join(t.TempDir(), "docs")

	require.NoError(t, run([]string{"generate", "--input", pkg, "--output", out}))
	assert.NoDirExists(t, out)
}

func TestGenerate_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	assert.Error(t, run([]string{"generate", "--input", missing}))
	assert.Error(t, run([]string{"generate"}))

	pkg := writePackage(t, samplePackage)
	assert.Error(t, run([]string{"--log-format", "xml", "generate", "--input", pkg}))
	assert.Error(t, run([]string{"generate", "--input", pkg, "--workers=-1"}))
}

func TestGenerate_ConfigFile(t *testing.T) {
	pkg := writePackage(t, samplePackage)
	out := filepath.Join(t.TempDir(), "site")
	cfgPath := filepath.Join(t.TempDir(), "dhall-docs.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: "+out+"\npackage_name: FromConfig\n"), 0o644))

	require.NoError(t, run([]string{"--config", cfgPath, "generate", "--input", pkg}))

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "FromConfig")
}

func TestGenerateCmd_Apply(t *testing.T) {
	base := config.Default()
	cmd := GenerateCmd{Output: "out", Workers: 3, Ext: []string{"dhall"}, NoIgnore: true, CheckLinks: true}
	got := cmd.apply(base)

	assert.Equal(t, "out", got.OutputDir)
	assert.Equal(t, 3, got.Workers)
	assert.Equal(t, []string{"dhall"}, got.Extensions)
	assert.False(t, got.UseIgnore)
	assert.True(t, got.CheckLinks)

	assert.Equal(t, base, (&GenerateCmd{}).apply(base))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "json", "warn").Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, "json", "warn").Warn("shown", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger(&buf, "text", "bogus").Info("info by default")
	assert.Contains(t, buf.String(), "msg=\"info by default\"")
}
