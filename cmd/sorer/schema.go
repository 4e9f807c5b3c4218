package main

import (
	"github.com/spf13/cobra"

	"github.com/yth/sorer/pkg/columnar"
	jsonpool "github.com/yth/sorer/pkg/json"
	"github.com/yth/sorer/pkg/schema"
)

// schemaReport is the output of the schema command
type schemaReport struct {
	File        string              `json:"file"`
	Compression string              `json:"compression"`
	Bytes       int                 `json:"bytes"`
	Schema      *schema.Schema      `json:"schema"`
	Start       int                 `json:"start"`
	End         int                 `json:"end"`
	Rows        int                 `json:"rows"`
	Chunks      int                 `json:"chunks"`
	Inference   schema.Stats        `json:"inference"`
	Build       columnar.BuildStats `json:"build"`
}

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the inferred schema and build statistics as JSON",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.wrap(func(cmd *cobra.Command, _ []string) error {
		in, res, err := a.build(cmd.Context())
		if err != nil {
			return err
		}
		defer in.Close()

		data, err := jsonpool.MarshalIndent(schemaReport{
			File:        in.Path(),
			Compression: string(in.Compression()),
			Bytes:       in.Size(),
			Schema:      res.Schema,
			Start:       res.Start,
			End:         res.End,
			Rows:        res.Columns.Rows(),
			Chunks:      res.Chunks,
			Inference:   res.Inference,
			Build:       res.Build,
		}, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		_, err = cmd.OutOrStdout().Write(data)
		return err
	})
	return cmd
}
