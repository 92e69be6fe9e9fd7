// Package annotation anchors tags found in annotated text to offsets in the
// raw, unannotated text.
package annotation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/turtacn/phimark/internal/markup/tag"
	"github.com/turtacn/phimark/pkg/errors"
)

// Annotation is one annotated range of the raw text.  Offsets are byte
// offsets, End exclusive.  Annotation is comparable; == is structural
// equality over all fields.
type Annotation struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Tag   string `json:"tag"`
	Text  string `json:"text"`
}

// Equal reports whether a and other are the same annotation.
func (a Annotation) Equal(other Annotation) bool {
	return a == other
}

// Len returns the length of the annotated text in bytes.
func (a Annotation) Len() int {
	return a.End - a.Start
}

// String renders the annotation as TAG[start:end].
func (a Annotation) String() string {
	return fmt.Sprintf("%s[%d:%d]", a.Tag, a.Start, a.End)
}

// GetAnnotations converts tags into annotations positioned in raw-text
// coordinates.
//
// tags must be non-overlapping, non-nested and listed in the order they
// appear in annotatedText.  Two cursors are kept: one into annotatedText,
// advanced past each whole tag, and one into the raw text, advanced only by
// the tag's value since the markup overhead has no counterpart there.  The
// raw cursor starts at nLeadingWhitespaces, the number of bytes stripped from
// the front of the raw text before it was annotated.
//
// A tag that cannot be found from the current search position, because it is
// absent or out of order, fails with TagNotFound.
func GetAnnotations(annotatedText string, tags []string, nLeadingWhitespaces int) ([]Annotation, error) {
	annotations := make([]Annotation, 0, len(tags))

	searchIx := 0
	rawIx := nLeadingWhitespaces

	for i, t := range tags {
		typ, text, err := tag.ParseTag(t)
		if err != nil {
			return nil, err
		}

		gap := strings.Index(annotatedText[searchIx:], t)
		if gap < 0 {
			return nil, errors.TagNotFound("tag not found after search position").
				WithDetail(fmt.Sprintf("tag=%s index=%d offset=%d", t, i, searchIx))
		}

		start := rawIx + gap
		annotations = append(annotations, Annotation{
			Start: start,
			End:   start + len(text),
			Tag:   typ,
			Text:  text,
		})

		searchIx += gap + len(t)
		rawIx += gap + len(text)
	}

	return annotations, nil
}

// FirstNonWhitespace returns the byte index of the first non-whitespace
// character of text.
func FirstNonWhitespace(text string) (int, error) {
	ix := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsSpace(r) })
	if ix < 0 {
		return 0, errors.EmptyOrWhitespaceOnly("text has no non-whitespace character")
	}
	return ix, nil
}
