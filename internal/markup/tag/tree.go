package tag

import (
	"strings"

	"github.com/turtacn/phimark/pkg/errors"
)

// Node is one node of a parsed markup tree: either a Literal or an Element.
// The set of variants is closed.
type Node interface {
	// Render reproduces the markup the node was parsed from.
	Render() string
	isNode()
}

// Literal is plain text outside of or between tags.
type Literal struct {
	Text string
}

// Element is a `<Type children...>` tag.
type Element struct {
	Type     string
	Children []Node
}

func (Literal) isNode() {}
func (Element) isNode() {}

// Render returns the literal text unchanged.
func (l Literal) Render() string { return l.Text }

// Render returns the element as markup.  Rendering a parsed element yields
// the original tag only when it was separated from its value by a single
// space.
func (e Element) Render() string {
	var sb strings.Builder
	sb.WriteByte(openHook)
	sb.WriteString(e.Type)
	sb.WriteByte(' ')
	for _, c := range e.Children {
		sb.WriteString(c.Render())
	}
	sb.WriteByte(closeHook)
	return sb.String()
}

// Parse builds the markup tree of text.  Top-level literal runs become
// Literal nodes and top-level tags become Element nodes whose value is parsed
// recursively.
func Parse(text string) ([]Node, error) {
	segments, err := SplitTags(text)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(segments))
	for _, seg := range segments {
		if !IsTag(seg) {
			nodes = append(nodes, Literal{Text: seg})
			continue
		}
		el, err := parseElement(seg)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, el)
	}
	return nodes, nil
}

// parseElement parses one balanced top-level tag.
func parseElement(tag string) (Element, error) {
	typ, rest, ok := splitHead(tag[1 : len(tag)-1])
	if !ok {
		return Element{}, errors.MalformedTag("tag has no separating whitespace").WithDetail("tag=" + tag)
	}
	children, err := Parse(rest)
	if err != nil {
		return Element{}, err
	}
	return Element{Type: typ, Children: children}, nil
}

// Fold reduces a node to its flat (type, value) pair.  A literal contributes
// no type; an element's type is its own type followed by its children's types
// in document order, and its value is the concatenation of its children's
// values.
func Fold(n Node) (typ, value string) {
	switch v := n.(type) {
	case Literal:
		return "", v.Text
	case Element:
		var types, values strings.Builder
		types.WriteString(v.Type)
		for _, c := range v.Children {
			ct, cv := Fold(c)
			types.WriteString(ct)
			values.WriteString(cv)
		}
		return types.String(), values.String()
	default:
		return "", ""
	}
}
