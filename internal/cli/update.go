package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/viewdb/internal/record"
	"github.com/roach88/viewdb/internal/source"
	"github.com/roach88/viewdb/internal/store"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	*RootOptions
	Where []string
	Set   []string
	Table string
	From  string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UpdateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <file>",
		Short: "Set fields on the records matching every condition",
		Long: `Load a record set, take a mutable view of the records matching the first
--where condition, narrow it by each remaining condition, and apply every
--set assignment to the survivors. Prints the whole record set afterwards.

The input file is not modified.

Example:
  viewdb update people.yaml --where 'age < 18' --set minor=true
  viewdb update people.cue --where 'admin = true' --where 'len(name) <= 3' --set role=ops`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "condition to narrow by (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "field=value assignment (repeatable, required)")
	cmd.Flags().StringVar(&opts.Table, "table", rootOpts.Config.Table, "sqlite table to read")
	cmd.Flags().StringVar(&opts.From, "from", "", "input format (yaml|json|cue|sqlite), detected from the extension by default")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func runUpdate(opts *UpdateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	preds, err := compileConditions(opts.Where)
	if err != nil {
		return fail(formatter, "invalid condition", err)
	}
	sets, err := parseAssignments(opts.Set)
	if err != nil {
		_ = formatter.Error(ErrCodeUsage, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeUsage, err)
	}
	format, err := source.ParseFormat(opts.From)
	if err != nil {
		return fail(formatter, "invalid --from", err)
	}

	records, err := source.Load(cmd.Context(), path, source.Options{Format: format, Table: opts.Table})
	if err != nil {
		return fail(formatter, "failed to load records", err)
	}

	st := opts.newStore(records)
	updated, err := applyUpdate(st, preds, sets)
	if err != nil {
		return fail(formatter, "update rejected", err)
	}
	formatter.VerboseLog("Updated %d of %d record(s)", updated, st.Len())

	view, err := st.AsView()
	if err != nil {
		return fail(formatter, "selection rejected", err)
	}
	defer view.Release()

	result := RecordsResult{Count: view.Len(), Total: st.Len(), Updated: &updated}
	summary := fmt.Sprintf("%d of %d record(s) updated", updated, st.Len())
	return formatter.Records(view.Records(), result, summary, false)
}

// applyUpdate selects mutably with the first predicate, narrows by the rest
// and writes every assignment. The mutable view is released before return.
func applyUpdate(st *store.Store[record.Object], preds []store.Predicate[record.Object], sets []assignment) (int, error) {
	var (
		m   *store.MutableView[record.Object]
		err error
	)
	if len(preds) == 0 {
		m, err = st.AsViewMut()
	} else {
		m, err = st.SelectWhereMut(preds[0])
		preds = preds[1:]
	}
	if err != nil {
		return 0, err
	}

	for _, p := range preds {
		next, err := m.SelectWhereMut(p)
		if err != nil {
			m.Release()
			return 0, err
		}
		m = next
	}
	defer m.Release()

	err = m.UpdateAll(func(obj *record.Object) {
		next := obj.Clone()
		for _, a := range sets {
			next[a.Field] = a.Value
		}
		*obj = next
	})
	if err != nil {
		return 0, err
	}
	return m.Len(), nil
}
