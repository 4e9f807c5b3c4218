// Package config provides the configuration for sorer runs.
//
// A Config is organized into sections:
//   - Input: which file to read and which byte window to build
//   - Inference: how many rows the schema sample covers
//   - Build: parallelism and malformed-row policy for the columnar builder
//   - Observability: logging, metrics and tracing
//
// Configuration can be created programmatically with Default or loaded from
// YAML with Load. ${VAR_NAME} references in the YAML are replaced with
// environment values before parsing:
//
//	input:
//	  path: ${SORER_DATA}/events.sor
//	  from: 0
//	  len: -1
//	inference:
//	  sample_rows: 500
//
// The command line layers flags and SORER_* environment variables on top of
// the loaded file.
package config
