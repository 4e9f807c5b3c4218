// Command sorer reads schema-on-read (.sor) files, infers their column
// types and answers queries about individual cells.
//
//	sorer -f data.sor -from 0 -len 4096 -print_col_type 2
//	sorer -f data.sor -print_col_idx 2 10
//	sorer -f data.sor -is_missing_idx 2 10
//	sorer schema -f data.sor.zst
//	sorer export -f data.sor --format arrow -o data.arrow
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(normalizeLegacyArgs(os.Args[1:]))
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
