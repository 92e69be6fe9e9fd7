package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

type tokenList []string

func (t tokenList) String() string { return strings.Join(t, " ") }

// NewMergeCmd merges the configured protected phrases in a token sequence.
// Tokens are the arguments, or the whitespace-separated words of the input.
func NewMergeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "merge [tokens...]",
		Short:   "Merge protected token phrases such as A 1 into single tokens",
		Example: `  phimark merge opgenomen op A 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			tokens := args
			if len(tokens) == 0 {
				text, err := readInput(cmd, nil, file)
				if err != nil {
					return err
				}
				tokens = strings.Fields(text)
			}

			merged, err := cliCtx.Service.MergeTokens(cmd.Context(), tokens)
			if err != nil {
				return err
			}
			return PrintResult(cmd, tokenList(merged))
		},
	}

	addFileFlag(cmd, &file)
	return cmd
}
