package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/dhalldocs/internal/doctree"
	"github.com/go-enry/go-enry/v2"
)

// Parser converts raw source bytes into a header and a document.
// Whether a file is a source file at all is decided here, by content.
type Parser interface {
	Parse(path string, src []byte) (*doctree.Parsed, error)
}

// ErrBinary is returned for content that is not text.
var ErrBinary = errors.New("binary content")

// SyntaxError reports the position where a file stopped looking like Dhall.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Msg)
}

// DhallParser recognises Dhall expressions. It extracts the header (leading
// whitespace and comments) and checks the rest of the file lexically: every
// bracket, comment, text literal and quoted label must be closed, and no
// character outside Dhall's alphabet may appear outside of text and imports.
type DhallParser struct{}

func (p *DhallParser) Parse(path string, src []byte) (*doctree.Parsed, error) {
	if bytes.IndexByte(src, 0) >= 0 || enry.IsBinary(src) {
		return nil, fmt.Errorf("parse %s: %w", path, ErrBinary)
	}
	if !utf8.Valid(src) {
		return nil, &SyntaxError{Line: 1, Col: 1, Msg: "invalid UTF-8"}
	}

	s := &scanner{src: src}
	if err := s.skipTrivia(); err != nil {
		return nil, err
	}
	bodyStart := s.pos
	if bodyStart == len(src) {
		return nil, s.errorAt(bodyStart, "missing expression")
	}
	if err := s.scanExpr(-1, 0); err != nil {
		return nil, err
	}

	return &doctree.Parsed{
		Header: string(src[:bodyStart]),
		Doc: doctree.Document{
			Source: string(src),
			Body:   string(bytes.TrimSpace(src[bodyStart:])),
			Lines:  countLines(src),
		},
	}, nil
}

type scanner struct {
	src []byte
	pos int
}

func (s *scanner) hasPrefix(p string) bool {
	return bytes.HasPrefix(s.src[s.pos:], []byte(p))
}

func (s *scanner) errorAt(pos int, format string, args ...any) *SyntaxError {
	before := s.src[:pos]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := pos - bytes.LastIndexByte(before, '\n')
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// skipTrivia consumes whitespace and comments.
func (s *scanner) skipTrivia() error {
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case s.hasPrefix("--"):
			s.skipLine()
		case s.hasPrefix("{-"):
			if err := s.skipBlockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (s *scanner) skipLine() {
	if i := bytes.IndexByte(s.src[s.pos:], '\n'); i >= 0 {
		s.pos += i + 1
		return
	}
	s.pos = len(s.src)
}

// skipURL consumes a remote import. URLs may contain characters that are
// not otherwise part of the language.
func (s *scanner) skipURL() {
	for s.pos < len(s.src) && isURLChar(s.src[s.pos]) {
		s.pos++
	}
}

// isURLChar reports whether c may appear in a remote import: unreserved,
// percent-encoded, sub-delims other than parentheses, and the : @ / ? #
// separators.
func isURLChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-._~%!$&'*+,;=:@/?#", c) >= 0
}

// skipBlockComment consumes a {- -} comment. Block comments nest.
func (s *scanner) skipBlockComment() error {
	open := s.pos
	depth := 0
	for s.pos < len(s.src) {
		switch {
		case s.hasPrefix("{-"):
			depth++
			s.pos += 2
		case s.hasPrefix("-}"):
			depth--
			s.pos += 2
			if depth == 0 {
				return nil
			}
		default:
			s.pos++
		}
	}
	return s.errorAt(open, "unterminated block comment")
}

// scanExpr consumes expression text until closer, or to the end of input
// when closer is 0. open is the position of the opening bracket.
func (s *scanner) scanExpr(open int, closer byte) error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case s.hasPrefix("--"):
			s.skipLine()
		case s.hasPrefix("{-"):
			if err := s.skipBlockComment(); err != nil {
				return err
			}
		case s.hasPrefix("''"):
			start := s.pos
			s.pos += 2
			if err := s.scanMultiline(start); err != nil {
				return err
			}
		case c == '"':
			start := s.pos
			s.pos++
			if err := s.scanText(start); err != nil {
				return err
			}
		case c == '`':
			i := bytes.IndexByte(s.src[s.pos+1:], '`')
			if i < 0 {
				return s.errorAt(s.pos, "unterminated quoted label")
			}
			s.pos += i + 2
		case c == '(' || c == '[' || c == '{':
			start := s.pos
			s.pos++
			if err := s.scanExpr(start, closing(c)); err != nil {
				return err
			}
		case c == ')' || c == ']' || c == '}':
			if c != closer {
				return s.errorAt(s.pos, "unexpected %q", c)
			}
			s.pos++
			return nil
		case c == '!':
			if !s.hasPrefix("!=") {
				return s.errorAt(s.pos, "unexpected %q", c)
			}
			s.pos += 2
		case c == '&':
			if !s.hasPrefix("&&") {
				return s.errorAt(s.pos, "unexpected %q", c)
			}
			s.pos += 2
		case s.hasPrefix("https://") || s.hasPrefix("http://"):
			s.skipURL()
		case c == '\'' || c == ';' || c == '^' || c == '$':
			return s.errorAt(s.pos, "unexpected %q", c)
		default:
			s.pos++
		}
	}
	if closer != 0 {
		return s.errorAt(open, "unclosed %q", s.src[open])
	}
	return nil
}

// scanText consumes a double-quoted text literal after its opening quote.
func (s *scanner) scanText(open int) error {
	for s.pos < len(s.src) {
		switch {
		case s.src[s.pos] == '\\':
			s.pos += 2
		case s.src[s.pos] == '"':
			s.pos++
			return nil
		case s.hasPrefix("${"):
			start := s.pos
			s.pos += 2
			if err := s.scanExpr(start, '}'); err != nil {
				return err
			}
		default:
			s.pos++
		}
	}
	return s.errorAt(open, "unterminated text literal")
}

// scanMultiline consumes a '' text literal after its opening quotes.
func (s *scanner) scanMultiline(open int) error {
	for s.pos < len(s.src) {
		switch {
		case s.hasPrefix("'''"):
			s.pos += 3
		case s.hasPrefix("''${"):
			s.pos += 4
		case s.hasPrefix("''"):
			s.pos += 2
			return nil
		case s.hasPrefix("${"):
			start := s.pos
			s.pos += 2
			if err := s.scanExpr(start, '}'); err != nil {
				return err
			}
		default:
			s.pos++
		}
	}
	return s.errorAt(open, "unterminated multi-line text literal")
}

func closing(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '[':
		return ']'
	}
	return '}'
}

func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'})
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
