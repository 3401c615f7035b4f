// Package header turns a raw header comment into plain text for rendering.
package header

import "strings"

// Kind identifies a comment convention.
type Kind int

const (
	LineComment Kind = iota
	BlockComment
)

// Marker is one strippable comment convention. Close is only used by
// BlockComment markers.
type Marker struct {
	Kind  Kind
	Open  string
	Close string
}

// DefaultMarkers are Dhall's comment conventions, in priority order.
var DefaultMarkers = []Marker{
	{Kind: LineComment, Open: "--"},
	{Kind: BlockComment, Open: "{-", Close: "-}"},
}

// Normalizer strips the first matching marker from a header.
type Normalizer struct {
	Markers []Marker
}

// Normalize strips Dhall comment syntax from a raw header.
func Normalize(raw string) string {
	return Normalizer{Markers: DefaultMarkers}.Normalize(raw)
}

// Normalize trims raw, strips the first marker that matches it, and trims
// again. Stripping repeats until no marker matches, so that normalizing
// already-normalized text is a no-op.
func (n Normalizer) Normalize(raw string) string {
	text := strings.TrimSpace(raw)
	for {
		stripped, ok := n.stripOnce(text)
		if !ok {
			return text
		}
		text = strings.TrimSpace(stripped)
	}
}

func (n Normalizer) stripOnce(text string) (string, bool) {
	for _, m := range n.Markers {
		if stripped, ok := m.strip(text); ok {
			return stripped, true
		}
	}
	return "", false
}

func (m Marker) strip(text string) (string, bool) {
	if m.Open == "" {
		return "", false
	}
	switch m.Kind {
	case LineComment:
		if strings.HasPrefix(text, m.Open) {
			return text[len(m.Open):], true
		}
	case BlockComment:
		if len(text) >= len(m.Open)+len(m.Close) &&
			strings.HasPrefix(text, m.Open) && strings.HasSuffix(text, m.Close) {
			return text[len(m.Open) : len(text)-len(m.Close)], true
		}
	}
	return "", false
}
