// SPDX-License-Identifier: MIT

// validate checks hwcomposer configuration files and frame scenarios
// without opening a composer.
//
// Usage:
//
//	validate -f config.yaml
//	validate -f config.yaml -scenario frames.yaml
//
// Exit codes:
//   - 0: Input is valid
//   - 1: Input is invalid (parse or validation error)
//   - 2: Usage error (missing required flag)
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ManuGH/hwcomposer/internal/config"
	"github.com/ManuGH/hwcomposer/internal/scenario"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file, scenarioFile string
	var showVersion bool
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&scenarioFile, "scenario", "", "path to YAML frame scenario (optional)")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if showVersion {
		_, _ = fmt.Fprintln(stdout, Version)
		return 0
	}

	if file == "" && scenarioFile == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file or --scenario is required")
		_, _ = fmt.Fprintln(stderr, "")
		_, _ = fmt.Fprintln(stderr, "Usage:")
		_, _ = fmt.Fprintln(stderr, "  validate -f config.yaml")
		_, _ = fmt.Fprintln(stderr, "  validate -f config.yaml -scenario frames.yaml")
		return 2
	}

	if file != "" {
		// Load applies strict YAML decoding and Validate.
		cfg, err := config.NewLoader(file, Version).Load()
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Configuration error in %s:\n", file)
			_, _ = fmt.Fprintf(stderr, "  %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "✓ %s is valid\n", file)

		if scenarioFile == "" {
			scenarioFile = cfg.Scenario.Path
		}
	}

	if scenarioFile != "" {
		sc, err := scenario.Load(scenarioFile)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "Scenario error in %s:\n", scenarioFile)
			_, _ = fmt.Fprintf(stderr, "  %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "✓ %s is valid (%d frames)\n", scenarioFile, sc.Count())
	}
	return 0
}
