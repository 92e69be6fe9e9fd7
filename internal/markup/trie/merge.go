package trie

import "strings"

// Merge scans tokens left to right and replaces every phrase registered in t
// by one token holding the concatenation of its tokens.  At each position the
// longest registered phrase wins; a position with no match emits its token
// unchanged.
//
// Joining the result yields the same string as joining tokens, and the result
// is never longer than tokens.  A nil trie merges nothing.
func Merge(tokens []string, t *Trie) []string {
	out := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); {
		longest := longestMatch(t.FindAllPrefixes(tokens[i:]))
		if longest == nil {
			out = append(out, tokens[i])
			i++
			continue
		}
		out = append(out, strings.Join(longest, ""))
		i += len(longest)
	}
	return out
}

// longestMatch picks the first match of maximal length.  Prefixes of one
// sequence differ in length, so the choice is unique.
func longestMatch(matches [][]string) []string {
	var longest []string
	for _, m := range matches {
		if len(m) > len(longest) {
			longest = m
		}
	}
	return longest
}
