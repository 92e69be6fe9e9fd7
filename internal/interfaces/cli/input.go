package cli

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/phimark/pkg/errors"
)

// addFileFlag registers --file on cmd.
func addFileFlag(cmd *cobra.Command, file *string) {
	cmd.Flags().StringVarP(file, "file", "f", "", `read input from this file ("-" for stdin)`)
}

// readInput returns the command input: the positional arguments joined by
// spaces, else the content of file, else stdin.
func readInput(cmd *cobra.Command, args []string, file string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if file != "" && file != "-" {
		return readFile(file)
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidParam, "read stdin")
	}
	return string(b), nil
}

func readFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidParam, "read input file").WithDetail("path=" + path)
	}
	return string(b), nil
}
