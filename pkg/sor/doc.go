// Package sor implements the byte-level half of schema-on-read parsing for
// the SoR text format: rows are lines, fields are substrings delimited by
// '<' and '>', and anything between fields is filler.
//
// # Overview
//
// The package provides the pieces that must behave identically whether they
// run while inferring a schema or while materialising columns:
//   - Buffer: a read-only byte source with an explicit logical length, where a
//     NUL byte is the same end-of-input sentinel as the logical end
//   - ScanRow / RowScanner: the field and row tokenizer
//   - Trim / Classify: the field classifier over the Type lattice
//
// # Type lattice
//
// Types are totally ordered from least to most general:
//
//	Bottom < Bool < Int < Float < String
//
// Bottom means "no information": an empty field, or an unquoted token with
// internal whitespace that parses as nothing else. Widening a column is the
// maximum over this order, and a field fits a column when its type is less
// than or equal to the column type.
//
// # Usage
//
//	buf := sor.NewBuffer([]byte("<1> <12> <> <hi>\n"))
//	scanner := sor.NewRowScanner(buf, 0, buf.Len())
//	for scanner.Next() {
//		if scanner.Err() != nil {
//			continue // malformed row, already skipped past its terminator
//		}
//		row := scanner.Row()
//		sor.ClassifyRow(buf, &row)
//	}
//
// # Thread Safety
//
// Buffer is never mutated after construction, so any number of scanners may
// read it concurrently. Rows and fields are plain values owned by the caller.
package sor
