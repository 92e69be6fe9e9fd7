package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type tagList []string

func (t tagList) String() string { return strings.Join(t, "\n") }

func (t tagList) TableHeaders() []string { return []string{"#", "TAG"} }

func (t tagList) TableRows() [][]string {
	rows := make([][]string, len(t))
	for i, tag := range t {
		rows[i] = []string{fmt.Sprint(i + 1), tag}
	}
	return rows
}

// segmentList prints quoted so surrounding whitespace stays visible.
type segmentList []string

func (s segmentList) String() string {
	lines := make([]string, len(s))
	for i, seg := range s {
		lines[i] = fmt.Sprintf("%q", seg)
	}
	return strings.Join(lines, "\n")
}

// NewTagsCmd lists the top-level tags of the input, or with --split the
// alternating text and tag segments.
func NewTagsCmd() *cobra.Command {
	var (
		file  string
		split bool
	)

	cmd := &cobra.Command{
		Use:   "tags [text]",
		Short: "List the top-level tags of annotated text",
		Example: `  phimark tags "Dhr. <PERSOON Jan> belde"
  phimark tags --split -f note.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}

			if split {
				segments, err := cliCtx.Service.SplitTags(cmd.Context(), text)
				if err != nil {
					return err
				}
				return PrintResult(cmd, segmentList(nonNilStrings(segments)))
			}

			tags, err := cliCtx.Service.FindTags(cmd.Context(), text)
			if err != nil {
				return err
			}
			return PrintResult(cmd, tagList(nonNilStrings(tags)))
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().BoolVar(&split, "split", false, "print text and tag segments instead of tags only")
	return cmd
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
