package tag

import (
	"sort"
	"strings"

	"github.com/turtacn/phimark/pkg/errors"
)

// Flatten reduces one, possibly nested, tag to a (type, value) pair.
//
//	Flatten("plain")                      == ("", "plain")
//	Flatten("<INITIAL A <NAME Surname>>") == ("INITIALNAME", "A Surname")
//
// A string containing markup must consist of exactly one top-level tag.
func Flatten(tag string) (typ, value string, err error) {
	if !strings.ContainsRune(tag, openHook) {
		return "", tag, nil
	}

	nodes, err := Parse(tag)
	if err != nil {
		return "", "", err
	}
	if len(nodes) != 1 {
		return "", "", errors.MalformedTag("expected exactly one top-level tag").WithDetail("tag=" + tag)
	}
	el, ok := nodes[0].(Element)
	if !ok {
		return "", "", errors.MalformedTag("expected a tag").WithDetail("tag=" + tag)
	}

	typ, value = Fold(el)
	return typ, value, nil
}

// FlattenTextAllPHI replaces every nested top-level tag in text by a single
// tag carrying the outermost category and the flattened, trimmed value:
//
//	"Patient <PERSOON Jan <ACHTERNAAM Jansen>> is opgenomen"
//	→ "Patient <PERSOON Jan Jansen> is opgenomen"
//
// Unlike the person-name normalizer, this works for every category.
func FlattenTextAllPHI(text string) (string, error) {
	tags, err := FindTags(text)
	if err != nil {
		return "", err
	}

	// Longest first, so a tag that also occurs inside a longer one is never
	// substituted before its parent.
	sort.SliceStable(tags, func(i, j int) bool {
		return len(tags[i]) > len(tags[j])
	})

	for _, t := range tags {
		_, value, err := Flatten(t)
		if err != nil {
			return "", err
		}
		outer, _, err := ParseTag(t)
		if err != nil {
			return "", err
		}
		text = strings.ReplaceAll(text, t, "<"+outer+" "+strings.TrimSpace(value)+">")
	}
	return text, nil
}
