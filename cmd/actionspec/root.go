package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"actionspec-hq/sentinel/pkg/schemafs"
	"actionspec-hq/sentinel/pkg/spec/schema"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "actionspec",
	Short: "Sentinel - spec validation and change analysis",
	Long: `Sentinel validates ActionSpec documents against versioned schema
definitions and explains what changed between two revisions.

It provides:
  - Hardened YAML loading with size, depth, and alias-expansion limits
  - Schema validation with per-field machine-checkable rules
  - Change analysis classified as errors, warnings, and info
  - PR-ready Markdown descriptions of spec changes
  - An HTTP API with run history and Prometheus metrics

For more information, visit: https://github.com/actionspec-hq/sentinel`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// newSchemaRegistry builds the registry local commands validate against.
// An empty dir selects the built-in schema definitions.
func newSchemaRegistry(dir string) *schema.Registry {
	if dir != "" {
		return schema.NewRegistry(schemafs.NewDirSource(dir))
	}
	return schema.NewRegistry(schema.BuiltinSource())
}
