// Package sorer reads schema-on-read (.sor) files: newline-terminated rows of
// '<'-delimited fields whose column types are not declared anywhere and have
// to be inferred from the data.
//
// # Overview
//
// A run has three phases:
//
//  1. Inference samples the first 500 rows, classifies every field as BOOL,
//     INT, FLOAT or STRING (or BOTTOM for empty and unusable fields) and
//     widens each column to the largest type seen.
//  2. Alignment turns the requested byte window into one that starts and
//     ends on row boundaries.
//  3. The build re-scans the window and keeps every row whose width matches
//     the schema and whose fields fit their column types. Rows are kept or
//     dropped whole, so all columns have the same length.
//
// Columns store byte spans into the input rather than decoded values; values
// are decoded on demand by the query layer.
//
// # Quick Start
//
//	in, err := pipeline.Open("data.sor", pipeline.InputOptions{}, logger.Get())
//	if err != nil {
//	    return err
//	}
//	defer in.Close()
//
//	res, err := pipeline.Run(ctx, in.Buffer(), pipeline.Options{Len: -1})
//	if err != nil {
//	    return err
//	}
//
//	t := res.Table()
//	typ, _ := t.ColumnType(2)
//	v, _ := t.ValueAt(2, 10)
//	missing, _ := t.IsMissing(2, 10)
//
// # Key Packages
//
//	pkg/sor          - Buffer, spans, tokenizer and field classifier
//	pkg/schema       - Schema type and the sampling inferencer
//	pkg/columnar     - Columnar builder and query layer
//	pkg/mmap         - Read-only file mapping and range alignment
//	pkg/compression  - Compressed input and output streams
//	pkg/formats      - Arrow IPC, Parquet, Avro and JSON lines export
//	pkg/config       - Run configuration
//	pkg/errors       - Structured error handling
//	pkg/logger       - Structured logging
//	pkg/metrics      - Prometheus collectors
//	pkg/observability - OpenTelemetry tracing
//	internal/pipeline - Load, infer, align and build orchestration
//	cmd/sorer        - Command-line tool
//
// # Command Line
//
//	sorer -f data.sor [-from N] [-len N] -print_col_type COL
//	sorer -f data.sor [-from N] [-len N] -print_col_idx COL ROW
//	sorer -f data.sor [-from N] [-len N] -is_missing_idx COL ROW
//	sorer schema -f data.sor.zst
//	sorer export -f data.sor --format arrow -o data.arrow
package sorer
