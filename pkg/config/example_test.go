package config_test

import (
	"fmt"
	"log"

	"github.com/yth/sorer/pkg/config"
)

// ExampleDefault demonstrates the default run configuration.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Sample rows: %d\n", cfg.Inference.SampleRows)
	fmt.Printf("Length: %d\n", cfg.Input.Len)
	fmt.Printf("Compression: %s\n", cfg.Input.Compression)

	// Output:
	// Sample rows: 500
	// Length: -1
	// Compression: auto
}

// ExampleConfig_Validate shows how to validate a configuration before a run.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Input.Path = "data.sor"
	cfg.Input.From = 4096
	cfg.Input.Len = 1 << 20
	cfg.Build.Workers = 8

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cfg.Inference.SampleRows = 0
	fmt.Println(cfg.Validate())

	// Output:
	// config: inference.sample_rows must be positive
}
