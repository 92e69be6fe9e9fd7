package span

import (
	"strings"
	"unicode"
)

// Canonical person labels produced by Normalize.
const (
	LabelPatient = "PATIENT"
	LabelPerson  = "PERSOON"

	// patientMarker marks any descriptor that refers to the patient, e.g.
	// "PATIENT" or an "INITIALPAT" nesting path.
	patientMarker = "PAT"
)

// Normalize flattens and merges the person-name annotations of spans:
//
//  1. every annotated span is flattened to PATIENT when its descriptor
//     contains "PAT", to PERSOON otherwise;
//  2. adjacent annotated spans are merged by MergeAdjacent;
//  3. every annotated span is relabelled PATIENT when its descriptor contains
//     "PATIENT", PERSOON otherwise, reducing the composite labels of step 2.
//
// All annotations are assumed to denote parts of person names.  Spans of
// other categories (dates, locations) come out mislabelled.
func Normalize(spans []Span) []Span {
	flattened := make([]Span, len(spans))
	for i, s := range spans {
		if !s.IsAnnotated() {
			flattened[i] = s
			continue
		}
		label := LabelPerson
		if strings.Contains(s.Descriptor(), patientMarker) {
			label = LabelPatient
		}
		flattened[i] = s.Flatten(label)
	}

	merged := MergeAdjacent(flattened)

	out := make([]Span, len(merged))
	for i, s := range merged {
		if !s.IsAnnotated() {
			out[i] = s
			continue
		}
		label := LabelPerson
		if strings.Contains(s.Descriptor(), LabelPatient) {
			label = LabelPatient
		}
		out[i] = s.WithAnnotation(label)
	}
	return out
}

// MergeAdjacent merges runs of two annotated spans separated only by
// whitespace, periods, hyphens or commas (possibly nothing) into one Group.
//
// The scan runs right to left.  A merged group becomes the right-hand side of
// the next candidate run, so three or more adjacent annotations chain into a
// single group.  The group's label is the left label followed by the right
// label; its members are the run's spans without annotation.
//
// spans is not modified.
func MergeAdjacent(spans []Span) []Span {
	out := make([]Span, len(spans))
	copy(out, spans)

	endIx := -1
	for i := len(out) - 1; i >= 0; i-- {
		if !out[i].IsAnnotated() {
			continue
		}
		if endIx < 0 {
			endIx = i
			continue
		}

		run := out[i : endIx+1]
		if isAdjacentRun(run) {
			group := Group{
				Members: stripAll(run),
				Label:   ownLabel(run[0]) + ownLabel(run[len(run)-1]),
			}
			tail := out[endIx+1:]
			merged := make([]Span, 0, i+1+len(tail))
			merged = append(merged, out[:i]...)
			merged = append(merged, group)
			out = append(merged, tail...)
		}
		endIx = i
	}
	return out
}

// isAdjacentRun reports whether the text between the first and last span of
// run consists of separator characters only.
func isAdjacentRun(run []Span) bool {
	if len(run) < 2 || !run[0].IsAnnotated() || !run[len(run)-1].IsAnnotated() {
		return false
	}
	for _, s := range run[1 : len(run)-1] {
		if s.IsAnnotated() {
			return false
		}
		if strings.IndexFunc(s.Text(), isNotSeparator) >= 0 {
			return false
		}
	}
	return true
}

func isNotSeparator(r rune) bool {
	return !(unicode.IsSpace(r) || r == '.' || r == '-' || r == ',')
}

// ownLabel returns the span's own label, without member descriptors.
func ownLabel(s Span) string {
	switch v := s.(type) {
	case Annotated:
		return v.Label
	case Group:
		return v.Label
	default:
		return ""
	}
}
