// Package span models already-tokenized text as a sequence of spans and
// normalizes the person-name annotations carried by them.
package span

import (
	"strings"

	"github.com/turtacn/phimark/internal/markup/tag"
)

// ---------------------------------------------------------------------------
// Span
// ---------------------------------------------------------------------------

// Span is one unit of tokenized text.  The variants are Literal, Annotated
// and Group; the set is closed.
type Span interface {
	// Text renders the span: plain text for a literal, `<LABEL text>` for an
	// annotated span or labelled group.
	Text() string

	// Descriptor returns the full annotation descriptor: the span's own label
	// followed by the descriptors of any members.  Empty when the span carries
	// no annotation.
	Descriptor() string

	// IsAnnotated reports whether the span carries an annotation.
	IsAnnotated() bool

	// Flatten returns a copy annotated with exactly label; members of a group
	// lose their own annotations.  Unannotated spans are returned unchanged.
	Flatten(label string) Span

	// WithAnnotation returns a copy whose own label is replaced.  Unannotated
	// spans are returned unchanged.
	WithAnnotation(label string) Span

	// WithoutAnnotation returns a copy with every annotation removed.
	WithoutAnnotation() Span

	// Bounds returns the offsets assigned by the tokenizer, End exclusive.
	Bounds() (start, end int)

	isSpan()
}

// Literal is plain, unannotated text.
type Literal struct {
	Value string
	Start int
	End   int
}

// Annotated is a span carrying an annotation label.  Label may be a
// concatenated nesting path such as "INITIALPATIENT".
type Annotated struct {
	Value string
	Label string
	Start int
	End   int
}

// Group is a run of spans merged under one annotation.  It owns Members;
// members are never annotated themselves.
type Group struct {
	Members []Span
	Label   string
}

func (Literal) isSpan()   {}
func (Annotated) isSpan() {}
func (Group) isSpan()     {}

// FromTag builds an Annotated span from a possibly nested tag; the label is
// the tag's flattened type path and the value its flattened text.
func FromTag(t string, start, end int) (Annotated, error) {
	typ, value, err := tag.Flatten(t)
	if err != nil {
		return Annotated{}, err
	}
	return Annotated{Value: value, Label: typ, Start: start, End: end}, nil
}

// ── Literal ───────────────────────────────────────────────────────────────────

func (l Literal) Text() string               { return l.Value }
func (l Literal) Descriptor() string         { return "" }
func (l Literal) IsAnnotated() bool          { return false }
func (l Literal) Flatten(string) Span        { return l }
func (l Literal) WithAnnotation(string) Span { return l }
func (l Literal) WithoutAnnotation() Span    { return l }
func (l Literal) Bounds() (start, end int)   { return l.Start, l.End }

// ── Annotated ─────────────────────────────────────────────────────────────────

func (a Annotated) Text() string { return render(a.Label, a.Value) }

func (a Annotated) Descriptor() string { return a.Label }

func (a Annotated) IsAnnotated() bool { return true }

func (a Annotated) Flatten(label string) Span {
	a.Label = label
	return a
}

func (a Annotated) WithAnnotation(label string) Span {
	a.Label = label
	return a
}

func (a Annotated) WithoutAnnotation() Span {
	return Literal{Value: a.Value, Start: a.Start, End: a.End}
}

func (a Annotated) Bounds() (start, end int) { return a.Start, a.End }

// ── Group ─────────────────────────────────────────────────────────────────────

// Text renders the members, wrapped in `<LABEL ...>` when the group is
// labelled.
func (g Group) Text() string {
	inner := ToText(g.Members)
	if g.Label == "" {
		return inner
	}
	return render(g.Label, inner)
}

func (g Group) Descriptor() string {
	var sb strings.Builder
	sb.WriteString(g.Label)
	for _, m := range g.Members {
		sb.WriteString(m.Descriptor())
	}
	return sb.String()
}

func (g Group) IsAnnotated() bool { return g.Label != "" }

func (g Group) Flatten(label string) Span {
	if !g.IsAnnotated() {
		return g
	}
	return Group{Members: stripAll(g.Members), Label: label}
}

func (g Group) WithAnnotation(label string) Span {
	if !g.IsAnnotated() {
		return g
	}
	return Group{Members: g.Members, Label: label}
}

func (g Group) WithoutAnnotation() Span {
	return Group{Members: stripAll(g.Members)}
}

// Bounds spans from the first member's start to the last member's end.
func (g Group) Bounds() (start, end int) {
	if len(g.Members) == 0 {
		return 0, 0
	}
	start, _ = g.Members[0].Bounds()
	_, end = g.Members[len(g.Members)-1].Bounds()
	return start, end
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// ToText renders a span sequence.
func ToText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text())
	}
	return sb.String()
}

func render(label, value string) string {
	return "<" + label + " " + value + ">"
}

// stripAll returns unannotated copies of spans, splicing nested groups into
// their members so a group never contains another group.
func stripAll(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if g, ok := s.(Group); ok {
			out = append(out, stripAll(g.Members)...)
			continue
		}
		out = append(out, s.WithoutAnnotation())
	}
	return out
}
