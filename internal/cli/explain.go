package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/viewdb/internal/queryir"
	"github.com/roach88/viewdb/internal/querysql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Where []string
	Table string
}

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	Predicate string   `json:"predicate"`
	SQL       string   `json:"sql"`
	Params    []any    `json:"params"`
	Portable  bool     `json:"portable"`
	Warnings  []string `json:"warnings,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show how conditions compile to SQL",
		Long: `Parse the --where conditions, joined with AND, and print the SQLite query
they compile to along with its parameters and any portability warnings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition (repeatable)")
	cmd.Flags().StringVar(&opts.Table, "table", rootOpts.Config.Table, "sqlite table to query")

	return cmd
}

func runExplain(opts *ExplainOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	pred, err := queryir.ParseConditions(opts.Where)
	if err != nil {
		return fail(formatter, "invalid condition", err)
	}
	sql, params, err := querysql.NewSQLCompiler().SelectAll(opts.Table, pred)
	if err != nil {
		return fail(formatter, "cannot compile to SQL", err)
	}
	validation := queryir.Validate(pred)

	result := ExplainResult{
		Predicate: queryir.String(pred),
		SQL:       sql,
		Params:    params,
		Portable:  validation.IsPortable,
		Warnings:  validation.Warnings,
	}
	if result.Params == nil {
		result.Params = []any{}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "predicate: %s\n", result.Predicate)
	fmt.Fprintf(&b, "sql:       %s\n", result.SQL)
	fmt.Fprintf(&b, "params:    %v", formatParams(result.Params))
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "\nwarning:   %s", w)
	}
	return formatter.Success(b.String())
}

func formatParams(params []any) string {
	parts := make([]string, len(params))
	for i, p := range params {
		if s, ok := p.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
		} else {
			parts[i] = fmt.Sprint(p)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
