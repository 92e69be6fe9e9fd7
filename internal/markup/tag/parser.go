// Package tag parses and flattens the nested `<TYPE value>` annotation markup.
//
// A tag's value may contain further tags.  Hooks have no escape mechanism: a
// literal '<' or '>' inside value text is read as structure.  Every scanner in
// this package fails fast with a MARKUP_001 error on unbalanced hooks instead
// of returning partial output.
package tag

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turtacn/phimark/pkg/errors"
)

const (
	openHook  = '<'
	closeHook = '>'
)

// ---------------------------------------------------------------------------
// Depth scanner
// ---------------------------------------------------------------------------

// boundary is the byte range of one top-level tag, End exclusive.
type boundary struct {
	Start int
	End   int
}

// scanTopLevel walks text once, tracking hook depth, and returns the byte
// ranges of all maximal top-level tags in document order.
func scanTopLevel(text string) ([]boundary, error) {
	var (
		depth  int
		start  int
		bounds []boundary
	)

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case openHook:
			if depth == 0 {
				start = i
			}
			depth++
		case closeHook:
			depth--
			if depth < 0 {
				return nil, errors.MalformedMarkup("closing hook without matching opening hook").
					WithDetail(fmt.Sprintf("offset=%d", i))
			}
			if depth == 0 {
				bounds = append(bounds, boundary{Start: start, End: i + 1})
			}
		}
	}

	if depth != 0 {
		return nil, errors.MalformedMarkup("unclosed opening hook").
			WithDetail(fmt.Sprintf("offset=%d depth=%d", start, depth))
	}
	return bounds, nil
}

// ---------------------------------------------------------------------------
// Public scanners
// ---------------------------------------------------------------------------

// FindTags returns every maximal top-level tag of text in document order.
// Each tag includes all of its nested content.
func FindTags(text string) ([]string, error) {
	bounds, err := scanTopLevel(text)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(bounds))
	for _, b := range bounds {
		tags = append(tags, text[b.Start:b.End])
	}
	return tags, nil
}

// SplitTags splits text into literal runs and top-level tags.  Joining the
// result reproduces text exactly; empty literal runs are dropped.
//
//	SplitTags("This is a <NAME name> in it") == ["This is a ", "<NAME name>", " in it"]
func SplitTags(text string) ([]string, error) {
	bounds, err := scanTopLevel(text)
	if err != nil {
		return nil, err
	}

	segments := make([]string, 0, 2*len(bounds)+1)
	last := 0
	for _, b := range bounds {
		if b.Start > last {
			segments = append(segments, text[last:b.Start])
		}
		segments = append(segments, text[b.Start:b.End])
		last = b.End
	}
	if last < len(text) {
		segments = append(segments, text[last:])
	}
	return segments, nil
}

// IsTag reports whether segment is a tag as produced by SplitTags.
func IsTag(segment string) bool {
	return len(segment) >= 2 && segment[0] == openHook && segment[len(segment)-1] == closeHook
}

// ---------------------------------------------------------------------------
// ParseTag
// ---------------------------------------------------------------------------

// splitHead splits the inside of a tag at its first whitespace rune, dropping
// that rune.  ok is false when inner has no whitespace.
func splitHead(inner string) (typ, rest string, ok bool) {
	ix := strings.IndexFunc(inner, unicode.IsSpace)
	if ix < 0 {
		return "", "", false
	}
	_, width := utf8.DecodeRuneInString(inner[ix:])
	return inner[:ix], inner[ix+width:], true
}

// ParseTag splits a `<TYPE value>` tag into its type and value.  The tag is
// not parsed for nesting: for a nested tag the value still contains the inner
// markup, and the type is the outermost category.
func ParseTag(tag string) (typ, text string, err error) {
	if !IsTag(tag) {
		return "", "", errors.MalformedTag("tag must be enclosed in hooks").WithDetail("tag=" + tag)
	}
	typ, text, ok := splitHead(tag[1 : len(tag)-1])
	if !ok {
		return "", "", errors.MalformedTag("tag has no separating whitespace").WithDetail("tag=" + tag)
	}
	return typ, text, nil
}
