package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/phimark/internal/application/markup"
)

type flatTag struct {
	*markup.FlatTag
}

func (f flatTag) String() string { return f.Type + "\t" + f.Value }

func (f flatTag) TableHeaders() []string { return []string{"TYPE", "VALUE"} }

func (f flatTag) TableRows() [][]string { return [][]string{{f.Type, f.Value}} }

// NewFlattenCmd flattens nested tags: the whole text by default, or a single
// tag into its type path and value with --tag.
func NewFlattenCmd() *cobra.Command {
	var (
		file   string
		single bool
	)

	cmd := &cobra.Command{
		Use:   "flatten [text]",
		Short: "Flatten nested tags",
		Example: `  phimark flatten "Patient <PERSOON Jan <ACHTERNAAM Jansen>>"
  phimark flatten --tag "<INITIAL A <NAME Surname>>"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args, file)
			if err != nil {
				return err
			}

			if single {
				// A tag read from a file usually ends in a newline.
				flat, err := cliCtx.Service.FlattenTag(cmd.Context(), strings.TrimSpace(text))
				if err != nil {
					return err
				}
				return PrintResult(cmd, flatTag{flat})
			}

			out, err := cliCtx.Service.FlattenText(cmd.Context(), text)
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == OutputJSON {
				return PrintResult(cmd, map[string]string{"text": out})
			}
			return PrintResult(cmd, out)
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().BoolVar(&single, "tag", false, "treat the input as one tag and print its type and value")
	return cmd
}
