package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/phimark/internal/application/markup"
)

type annotateResult struct {
	*markup.AnnotateResult
}

func (r annotateResult) String() string {
	lines := make([]string, len(r.Annotations))
	for i, a := range r.Annotations {
		lines[i] = a.String() + "\t" + a.Text
	}
	return strings.Join(lines, "\n")
}

func (r annotateResult) TableHeaders() []string {
	return []string{"TAG", "START", "END", "TEXT"}
}

func (r annotateResult) TableRows() [][]string {
	rows := make([][]string, len(r.Annotations))
	for i, a := range r.Annotations {
		rows[i] = []string{a.Tag, strconv.Itoa(a.Start), strconv.Itoa(a.End), a.Text}
	}
	return rows
}

// NewAnnotateCmd maps the tags of an annotated file to byte offsets in the
// raw file it was derived from.
func NewAnnotateCmd() *cobra.Command {
	var rawPath, annotatedPath string

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Compute annotation byte offsets of tagged text in its raw source",
		Long: "annotate prints one annotation per tag of the annotated file. START and\n" +
			"END are UTF-8 byte offsets into the raw file, END exclusive; they are not\n" +
			"character indices when the text contains non-ASCII letters.",
		Example: `  phimark annotate --raw note.txt --annotated note.ann.txt -o table`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			raw, err := readFile(rawPath)
			if err != nil {
				return err
			}
			annotated, err := readFile(annotatedPath)
			if err != nil {
				return err
			}

			res, err := cliCtx.Service.Annotate(cmd.Context(), &markup.AnnotateInput{
				RawText:       raw,
				AnnotatedText: annotated,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, annotateResult{res})
		},
	}

	cmd.Flags().StringVar(&rawPath, "raw", "", "raw text file (required)")
	cmd.Flags().StringVar(&annotatedPath, "annotated", "", "annotated text file (required)")
	_ = cmd.MarkFlagRequired("raw")
	_ = cmd.MarkFlagRequired("annotated")
	return cmd
}
