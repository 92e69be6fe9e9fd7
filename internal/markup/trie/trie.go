// Package trie recognizes known multi-token phrases in a token sequence and
// merges them into single tokens.
package trie

// node is one trie node.  terminal marks the end of a registered sequence.
type node struct {
	children map[string]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// Trie is an immutable prefix tree over token sequences.  A *Trie is safe for
// concurrent use once New has returned.
type Trie struct {
	root *node
	size int
}

// New builds a trie holding sequences.  Empty sequences and duplicates are
// ignored.
func New(sequences ...[]string) *Trie {
	t := &Trie{root: newNode()}
	for _, seq := range sequences {
		t.add(seq)
	}
	return t
}

func (t *Trie) add(seq []string) {
	if len(seq) == 0 {
		return
	}
	cur := t.root
	for _, tok := range seq {
		next, ok := cur.children[tok]
		if !ok {
			next = newNode()
			cur.children[tok] = next
		}
		cur = next
	}
	if !cur.terminal {
		cur.terminal = true
		t.size++
	}
}

// Len returns the number of distinct sequences held by the trie.
func (t *Trie) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Contains reports whether seq was registered.
func (t *Trie) Contains(seq []string) bool {
	if t == nil || len(seq) == 0 {
		return false
	}
	cur := t.root
	for _, tok := range seq {
		next, ok := cur.children[tok]
		if !ok {
			return false
		}
		cur = next
	}
	return cur.terminal
}

// FindAllPrefixes returns every registered sequence that is a prefix of
// tokens, shortest first.  The returned slices alias tokens.
func (t *Trie) FindAllPrefixes(tokens []string) [][]string {
	if t == nil {
		return nil
	}

	var matches [][]string
	cur := t.root
	for i, tok := range tokens {
		next, ok := cur.children[tok]
		if !ok {
			break
		}
		cur = next
		if cur.terminal {
			matches = append(matches, tokens[:i+1:i+1])
		}
	}
	return matches
}
