package cli

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/phimark/internal/application/markup"
	"github.com/turtacn/phimark/pkg/errors"
)

type normalizeResult struct {
	*markup.NormalizeResult
}

func (r normalizeResult) String() string { return r.Text }

func (r normalizeResult) TableHeaders() []string {
	return []string{"LABEL", "START", "END", "TEXT"}
}

func (r normalizeResult) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Spans))
	for _, s := range r.Spans {
		rows = append(rows, []string{s.Label, strconv.Itoa(s.Start), strconv.Itoa(s.End), s.Text})
	}
	return rows
}

// NewNormalizeCmd normalizes person-name annotations in a JSON array of spans.
func NewNormalizeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "normalize",
		Short:   "Merge and relabel person-name spans (JSON array input)",
		Example: `  echo '[{"text":"A","label":"INITIAL"},{"text":" "},{"text":"<PAT Jansen>"}]' | phimark normalize`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, nil, file)
			if err != nil {
				return err
			}

			var spans []markup.SpanInput
			if err := json.Unmarshal([]byte(raw), &spans); err != nil {
				return errors.Wrap(err, errors.CodeInvalidParam, "input is not a JSON array of spans")
			}

			res, err := cliCtx.Service.NormalizeSpans(cmd.Context(), spans)
			if err != nil {
				return err
			}
			return PrintResult(cmd, normalizeResult{res})
		},
	}

	addFileFlag(cmd, &file)
	return cmd
}
