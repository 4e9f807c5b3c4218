package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yth/sorer/pkg/columnar"
	"github.com/yth/sorer/pkg/errors"
	"github.com/yth/sorer/pkg/schema"
)

const (
	flagColType = "print-col-type"
	flagColIdx  = "print-col-idx"
	flagMissing = "is-missing-idx"
)

// query is the one question asked on the command line
type query struct {
	flag string
	col  int
	row  int
}

func newRootCmd() *cobra.Command {
	a := newApp()

	root := &cobra.Command{
		Use:   "sorer",
		Short: "Schema-on-read parser for .sor files",
		Long: `sorer infers a schema from the first rows of a .sor file, builds typed
columns for a byte range of the file and answers one query about them.

Exactly one of --print-col-type, --print-col-idx or --is-missing-idx selects
the output. The single-dash flags of the original tool (-from, -len,
-print_col_type C, -print_col_idx C R, -is_missing_idx C R) are accepted.`,
		Example: `  sorer -f data.sor --print-col-type 0
  sorer -f data.sor --from 100 --len 4096 --print-col-idx 2,10
  sorer -f data.sor -is_missing_idx 2 10`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
	}
	root.RunE = a.wrap(a.runQuery)

	addInputFlags(root.PersistentFlags())
	root.Flags().String(flagColType, "", "print the inferred type of column `COL`")
	root.Flags().String(flagColIdx, "", "print the value at `COL,ROW`")
	root.Flags().String(flagMissing, "", "print 1 if the value at `COL,ROW` is missing, otherwise 0")

	root.AddCommand(newSchemaCmd(a), newExportCmd(a), newVersionCmd())
	return root
}

// parseQuery returns the requested query, or nil when none was given
func parseQuery(cmd *cobra.Command) (*query, error) {
	var q *query
	for _, name := range []string{flagColType, flagColIdx, flagMissing} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		if q != nil {
			return nil, errors.Newf(errors.ErrorTypeInvalidArgument,
				"only one of --%s, --%s, --%s can be used", flagColType, flagColIdx, flagMissing)
		}
		value, _ := cmd.Flags().GetString(name)
		parsed, err := parseQueryValue(name, value)
		if err != nil {
			return nil, err
		}
		q = parsed
	}
	return q, nil
}

func parseQueryValue(name, value string) (*query, error) {
	q := &query{flag: name}
	parts := strings.Split(value, ",")

	want := 2
	if name == flagColType {
		want = 1
	}
	if len(parts) != want {
		format := "COL,ROW"
		if want == 1 {
			format = "COL"
		}
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "--%s expects %s, got %q", name, format, value)
	}

	var err error
	if q.col, err = parseUint(name, parts[0]); err != nil {
		return nil, err
	}
	if want == 2 {
		if q.row, err = parseUint(name, parts[1]); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (a *app) runQuery(cmd *cobra.Command, _ []string) error {
	q, err := parseQuery(cmd)
	if err != nil {
		return err
	}
	if q == nil {
		// nothing was asked
		return nil
	}

	out := cmd.OutOrStdout()

	if q.flag == flagColType {
		in, err := a.open()
		if err != nil {
			return err
		}
		defer in.Close()

		s, _, err := schema.NewInferencer(a.log, schema.Options{SampleRows: a.cfg.Inference.SampleRows}).Infer(in.Buffer())
		if err != nil {
			return err
		}
		t, err := columnar.ColumnType(s, q.col)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, t)
		return nil
	}

	in, res, err := a.build(cmd.Context())
	if err != nil {
		return err
	}
	defer in.Close()

	table := res.Table()
	a.log.Debug("answering query",
		zap.String("query", q.flag),
		zap.Int("col", q.col),
		zap.Int("row", q.row),
		zap.Int("rows", table.Rows()))

	if q.flag == flagMissing {
		missing, err := table.IsMissing(q.col, q.row)
		if err != nil {
			return err
		}
		if missing {
			fmt.Fprintln(out, 1)
		} else {
			fmt.Fprintln(out, 0)
		}
		return nil
	}

	v, err := table.ValueAt(q.col, q.row)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, v.String())
	return nil
}
