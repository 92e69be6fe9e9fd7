// Package cli implements the phimark command line: markup operations on files
// or stdin, and the serve command running the HTTP API.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/phimark/internal/application/markup"
	"github.com/turtacn/phimark/internal/config"
	"github.com/turtacn/phimark/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/phimark/internal/markup/trie"
	"github.com/turtacn/phimark/pkg/client"
	"github.com/turtacn/phimark/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputTable = "table"
)

type cliContextKey struct{}

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	ServerAddr   string
	Timeout      time.Duration
}

// CLIContext carries the initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	LogLevel     logging.Level
	Service      markup.Service
	ConfigPath   string
	OutputFormat string
	Verbose      bool
}

// NewRootCommand creates the phimark root command with every subcommand.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "phimark",
		Short: "Inspect and normalize PHI markup in de-identification corpora",
		Long: "phimark works on text annotated with <CATEGORY value> tags: it finds and\n" +
			"flattens tags, maps them to byte offsets in the raw text, merges\n" +
			"protected token phrases and serves the same operations over HTTP.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment and built-in defaults)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&opts.ServerAddr, "server", "", "run operations on a phimark API server at this URL instead of locally")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout when --server is set")

	cmd.AddCommand(
		NewTagsCmd(),
		NewFlattenCmd(),
		NewAnnotateCmd(),
		NewMergeCmd(),
		NewNormalizeCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch opts.OutputFormat {
	case OutputText, OutputJSON, OutputTable:
	default:
		return errors.InvalidParam("unknown output format").WithDetail("output=" + opts.OutputFormat)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = "debug"
	}
	logLevel := logging.NewLevel(level)

	var logger logging.Logger
	if cmd.Name() == "serve" {
		logger, err = logging.NewLoggerWithLevel(cfg.Log, logLevel)
		if err != nil {
			return fmt.Errorf("logger initialization failed: %w", err)
		}
	} else {
		// stdout carries results; logs go to stderr in console form.
		logCfg := cfg.Log
		logCfg.Format = "console"
		logger = logging.NewWriterLogger(logCfg, logLevel, cmd.ErrOrStderr())
	}
	logging.SetDefault(logger)

	svc, err := newService(cfg, opts, logger)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		LogLevel:     logLevel,
		Service:      svc,
		ConfigPath:   opts.ConfigPath,
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// newService returns the in-process markup service, or an API client when
// --server is set.
func newService(cfg *config.Config, opts *RootOptions, logger logging.Logger) (markup.Service, error) {
	if opts.ServerAddr == "" {
		return markup.NewService(trie.New(cfg.Merge.Phrases...), nil, logger), nil
	}
	c, err := client.NewClient(opts.ServerAddr,
		client.WithLogger(logger),
		client.WithTimeout(opts.Timeout),
		client.WithUserAgent("phimark-cli/"+Version),
	)
	if err != nil {
		return nil, err
	}
	logger.Debug("using remote markup service", logging.String("server", opts.ServerAddr))
	return c, nil
}

// GetCLIContext extracts the CLIContext stored by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the root command with ctx and prints any error to stderr.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// tableData is implemented by results that render as a table.
type tableData interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data in the format selected by --output.  Text output
// uses the String method when data has one.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := OutputText
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	switch format {
	case OutputJSON:
		return printJSON(cmd, data)
	case OutputTable:
		if td, ok := data.(tableData); ok {
			_, err := fmt.Fprint(cmd.OutOrStdout(), FormatTable(td.TableHeaders(), td.TableRows()))
			return err
		}
		return printText(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	var err error
	switch v := data.(type) {
	case string:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return err
}

// PrintError writes err to stderr, prefixed with its error code when it has
// one.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	if ae, ok := errors.As(err); ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error [%s]: %s\n", ae.Code, err.Error())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders headers and rows as a borderless table.  Column widths
// follow display width, so names with diacritics stay aligned.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeader(headers)
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}
