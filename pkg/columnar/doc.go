// Package columnar stores the rows of a sor buffer as typed columns and
// answers typed queries against them.
//
// # Overview
//
// A Columnar never copies field text. Each column holds the raw byte span of
// every accepted field, and values are decoded from the source buffer on
// demand. The buffer must therefore outlive the Columnar built from it.
//
// # Building
//
// The Builder re-scans a byte range of the buffer with the same tokenizer the
// schema inferencer used. A row is accepted only if it has exactly as many
// fields as the schema and every field fits its column type:
//
//	b := columnar.NewBuilder(logger, columnar.Options{})
//	cols, stats, err := b.Build(buf, 0, buf.Len(), s)
//
// Rejected rows are dropped whole and counted in BuildStats; they are never
// returned as errors. Only a malformed field with Options.FailOnMalformed set
// aborts a build.
//
// # Querying
//
//	typ, _ := columnar.ColumnType(s, 2)
//	v, _ := columnar.ValueAt(buf, cols, 2, 10)
//	missing, _ := columnar.IsMissing(buf, cols, 2, 10)
//
// Table bundles a buffer and its Columnar behind the same three calls.
//
// # Concurrency
//
// A built Columnar is read-only and safe for concurrent queries. Builds over
// disjoint ranges may run in parallel and be joined with Append in range
// order.
package columnar
