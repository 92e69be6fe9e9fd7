package trie

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		trie   *Trie
		tokens []string
		want   []string
	}{
		{
			name:   "phrase at end",
			trie:   New([]string{"A", "1"}),
			tokens: []string{"Patient", "is", "opgenomen", "op", "A", "1"},
			want:   []string{"Patient", "is", "opgenomen", "op", "A1"},
		},
		{
			name:   "longest match wins",
			trie:   New([]string{"A"}, []string{"A", "1"}),
			tokens: []string{"A", "1", "B"},
			want:   []string{"A1", "B"},
		},
		{
			name:   "falls back to shorter match",
			trie:   New([]string{"A"}, []string{"A", "1", "B"}),
			tokens: []string{"A", "1", "C"},
			want:   []string{"A", "1", "C"},
		},
		{
			name:   "consecutive phrases",
			trie:   New([]string{"A", "1"}, []string{"A", "2"}),
			tokens: []string{"A", "1", "A", "2", "A"},
			want:   []string{"A1", "A2", "A"},
		},
		{
			name:   "no match",
			trie:   New([]string{"X", "Y"}),
			tokens: []string{"X", "Z", "Y"},
			want:   []string{"X", "Z", "Y"},
		},
		{
			name:   "empty trie",
			trie:   New(),
			tokens: []string{"A", "1"},
			want:   []string{"A", "1"},
		},
		{
			name:   "nil trie",
			trie:   nil,
			tokens: []string{"A", "1"},
			want:   []string{"A", "1"},
		},
		{
			name:   "empty input",
			trie:   New([]string{"A", "1"}),
			tokens: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Merge(tt.tokens, tt.trie))
		})
	}
}

func TestMerge_PreservesConcatenation(t *testing.T) {
	tr := New(
		[]string{"A", "1"},
		[]string{"A", "2"},
		[]string{"\n"},
		[]string{"de", "heer"},
		[]string{"de", "heer", "Jansen"},
	)

	inputs := [][]string{
		{"Patient", " ", "A", "1", "\n", "A", "2"},
		{"de", "heer", "Jansen", "en", "de", "heer"},
		{"de", "de", "heer", "heer"},
		{"A", "A", "1", "1"},
		{""},
	}

	for _, in := range inputs {
		out := Merge(in, tr)
		assert.Equal(t, strings.Join(in, ""), strings.Join(out, ""), "input %q", in)
		assert.LessOrEqual(t, len(out), len(in), "input %q", in)
	}
}

func TestMerge_DoesNotModifyInput(t *testing.T) {
	in := []string{"A", "1", "B"}
	_ = Merge(in, New([]string{"A", "1"}))
	assert.Equal(t, []string{"A", "1", "B"}, in)
}
