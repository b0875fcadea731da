package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"actionspec-hq/sentinel/pkg/cli"
	"actionspec-hq/sentinel/pkg/engine"
	"actionspec-hq/sentinel/pkg/source"
)

var validateFlags struct {
	dir           string
	schemaDir     string
	schemaVersion string
	format        string
}

var validateCmd = &cobra.Command{
	Use:   "validate [spec files...]",
	Short: "Validate spec files",
	Long: `Validate ActionSpec files against their schema definitions.

The validate command parses each spec under hardened YAML limits and
checks every field rule of the schema version the document declares:
  - YAML syntax and safety validation (size, depth, alias expansion)
  - Required fields, types, ranges, and enumerations
  - Cross-field conditional rules

Examples:
  # Validate a single file
  actionspec validate deploy/app.yaml

  # Validate a directory of specs
  actionspec validate --dir deploy/

  # Pin the schema version instead of honoring apiVersion
  actionspec validate deploy/app.yaml --schema-version v1

  # JSON output for CI/CD
  actionspec validate deploy/app.yaml --format json`,
	RunE: validateSpecs,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.dir, "dir", "d", "", "directory of spec files")
	validateCmd.Flags().StringVar(&validateFlags.schemaDir, "schema-dir", "", "directory of schema definition artifacts (default: built-in schemas)")
	validateCmd.Flags().StringVar(&validateFlags.schemaVersion, "schema-version", "", "validate against this schema version instead of the document's apiVersion")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

func validateSpecs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatMarkdown {
		return fmt.Errorf("markdown output is only available for diff")
	}

	if len(args) == 0 && validateFlags.dir == "" {
		return fmt.Errorf("either spec file arguments or --dir must be specified")
	}

	eng := engine.New(newSchemaRegistry(validateFlags.schemaDir))

	results := make([]FileResult, 0, len(args))
	for _, file := range args {
		result, err := validateSpecFile(eng, file)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		results = append(results, result)
	}

	if validateFlags.dir != "" {
		dirResults, err := validateSpecDir(cmd.Context(), eng, validateFlags.dir)
		if err != nil {
			return cli.NewCommandError("validate", err)
		}
		results = append(results, dirResults...)
	}

	if len(results) == 0 {
		return fmt.Errorf("no spec files found")
	}

	if format == cli.FormatJSON {
		return outputJSON(results)
	}
	return outputText(results)
}

// validateSpecDir checks every YAML document directly under dir. Reads go
// through a root-locked provider, so document names never escape the
// directory.
func validateSpecDir(ctx context.Context, eng *engine.Engine, dir string) ([]FileResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list spec files: %w", err)
	}

	provider := source.NewFileProvider(dir)
	results := make([]FileResult, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isSpecFile(entry.Name()) {
			continue
		}
		raw, err := provider.Fetch(ctx, entry.Name())
		if err != nil {
			return nil, err
		}
		result, err := validateSpecBytes(eng, filepath.Join(dir, entry.Name()), raw)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func isSpecFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

// FileResult represents the validation result for a single spec file.
type FileResult struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func validateSpecFile(eng *engine.Engine, path string) (FileResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return validateSpecBytes(eng, path, raw)
}

func validateSpecBytes(eng *engine.Engine, path string, raw []byte) (FileResult, error) {
	res, err := eng.ParseAndValidate(raw, validateFlags.schemaVersion)
	if err != nil {
		// A schema definition fault aborts the whole run; it is not a
		// property of the file under test.
		return FileResult{}, err
	}
	return FileResult{File: path, Valid: res.Valid, Errors: res.Errors}, nil
}

func outputText(results []FileResult) error {
	invalid := 0

	for _, result := range results {
		if result.Valid {
			fmt.Printf("✓ %s\n", result.File)
			continue
		}

		invalid++
		fmt.Printf("✗ %s\n", result.File)
		for _, msg := range result.Errors {
			fmt.Printf("    - %s\n", msg)
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d file(s) checked, %d invalid\n", len(results), invalid)

	if invalid > 0 {
		return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
	}
	return nil
}

func outputJSON(results []FileResult) error {
	formatter := &cli.JSONFormatter{Indent: true}
	if err := formatter.FormatTo(os.Stdout, results); err != nil {
		return err
	}

	for _, result := range results {
		if !result.Valid {
			return cli.NewCommandError("validate", fmt.Errorf("validation failed"))
		}
	}
	return nil
}
