package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/viewdb/internal/source"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Where     []string
	Table     string
	From      string
	CountOnly bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <file>",
		Short: "Print the records matching every condition",
		Long: `Load a record set and narrow a read-only view once per --where condition.

Conditions have the form 'field op value' or 'len(field) op n' with op one of
= == != < <= > >=. Values are integers, true, false, null, quoted strings or
bare words.

Example:
  viewdb select people.yaml --where 'age >= 18' --where 'admin = true'
  viewdb select people.db --table staff --where 'len(name) > 3' --count`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition to narrow by (repeatable)")
	cmd.Flags().StringVar(&opts.Table, "table", rootOpts.Config.Table, "sqlite table to read")
	cmd.Flags().StringVar(&opts.From, "from", "", "input format (yaml|json|cue|sqlite), detected from the extension by default")
	cmd.Flags().BoolVar(&opts.CountOnly, "count", false, "print only the number of selected records")

	return cmd
}

func runSelect(opts *SelectOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	preds, err := compileConditions(opts.Where)
	if err != nil {
		return fail(formatter, "invalid condition", err)
	}
	format, err := source.ParseFormat(opts.From)
	if err != nil {
		return fail(formatter, "invalid --from", err)
	}

	records, err := source.Load(cmd.Context(), path, source.Options{Format: format, Table: opts.Table})
	if err != nil {
		return fail(formatter, "failed to load records", err)
	}
	formatter.VerboseLog("Loaded %d record(s) from %s", len(records), path)

	st := opts.newStore(records)
	view, err := st.AsView()
	if err != nil {
		return fail(formatter, "selection rejected", err)
	}
	defer func() { view.Release() }()

	for i, p := range preds {
		narrowed, err := view.SelectWhere(p)
		if err != nil {
			return fail(formatter, "selection rejected", err)
		}
		formatter.VerboseLog("%s: %d -> %d", opts.Where[i], view.Len(), narrowed.Len())
		view.Release()
		view = narrowed
	}

	result := RecordsResult{Count: view.Len(), Total: st.Len()}
	summary := fmt.Sprintf("%d of %d record(s) selected", result.Count, result.Total)
	return formatter.Records(view.Records(), result, summary, opts.CountOnly)
}
