package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDhallParser_ExtractsHeader(t *testing.T) {
	src := "{- Map a function over a list -}\n\nlet map = \\(a : Type) -> a\n\nin  map\n"
	p := &DhallParser{}

	got, err := p.Parse("Prelude/List/map", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, "{- Map a function over a list -}\n\n", got.Header)
	assert.Equal(t, "let map = \\(a : Type) -> a\n\nin  map", got.Doc.Body)
	assert.Equal(t, src, got.Doc.Source)
	assert.Equal(t, 5, got.Doc.Lines)
}

func TestDhallParser_HeaderOfLineComments(t *testing.T) {
	src := "-- first\n-- second\n{ a = 1 }"
	got, err := (&DhallParser{}).Parse("rec.dhall", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "-- first\n-- second\n", got.Header)
	assert.Equal(t, "{ a = 1 }", got.Doc.Body)
}

func TestDhallParser_NoHeader(t *testing.T) {
	got, err := (&DhallParser{}).Parse("n.dhall", []byte("1 + 2"))
	require.NoError(t, err)
	assert.Empty(t, got.Header)
	assert.Equal(t, 1, got.Doc.Lines)
}

func TestDhallParser_AcceptsValidExpressions(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"nested block comment", "{- outer {- inner -} still outer -} True"},
		{"text with escapes", `"a \"quoted\" word"`},
		{"text interpolation", `let x = "y" in "${x} and ${"${x}"}"`},
		{"multi-line text", "''\n  hello ${name}\n  escaped ''${not} and '''\n''"},
		{"quoted label", "{ `if` = 1 }"},
		{"operators", "a && b || c != d == e # [ 1 ] ++ \"x\" // { a = 1 }"},
		{"remote import", "https://prelude.dhall-lang.org/v20.0.0/package.dhall?x=1&y=%20 sha256:abc"},
		{"remote import closing a record", "{ Prelude = https://prelude.dhall-lang.org/package.dhall}"},
		{"remote import closing a list", "[https://example.com/a.dhall]"},
		{"remote import in parens", "(https://example.com/a.dhall)"},
		{"home import", "~/config/default.dhall"},
		{"union", "< Left : Natural | Right : Bool >.Left 1"},
		{"trailing comment", "1 -- done"},
		{"unicode", "λ(x : Natural) → x"},
	}
	p := &DhallParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.name, []byte(tt.src))
			assert.NoError(t, err)
		})
	}
}

func TestDhallParser_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		col  int
	}{
		{"empty", "", 1, 1},
		{"only comments", "-- nothing here\n{- or here -}\n", 3, 1},
		{"unclosed paren", "(1 + 2", 1, 1},
		{"mismatched bracket", "[ 1, 2 )", 1, 8},
		{"unterminated comment", "1 {- never closed", 1, 3},
		{"unterminated text", "\"abc", 1, 1},
		{"unterminated multi-line", "''\nabc\n", 1, 1},
		{"unterminated label", "`abc", 1, 1},
		{"semicolon", "x;\n", 1, 2},
		{"prose apostrophe", "# Title\n\nDon't panic.", 3, 4},
		{"lone bang", "!x", 1, 1},
		{"lone ampersand", "a & b", 1, 3},
		{"stray closer", "1 }", 1, 3},
	}
	p := &DhallParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.name, []byte(tt.src))
			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Equal(t, tt.line, synErr.Line, "line")
			assert.Equal(t, tt.col, synErr.Col, "col")
		})
	}
}

func TestDhallParser_RejectsBinary(t *testing.T) {
	_, err := (&DhallParser{}).Parse("img.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01})
	assert.True(t, errors.Is(err, ErrBinary))
}

func TestDhallParser_RejectsInvalidUTF8(t *testing.T) {
	_, err := (&DhallParser{}).Parse("bad", []byte{'a', 0xff, 'b'})
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, "invalid UTF-8", synErr.Msg)
}
