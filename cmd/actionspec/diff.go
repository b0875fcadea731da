package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"actionspec-hq/sentinel/pkg/analysis"
	"actionspec-hq/sentinel/pkg/cli"
	"actionspec-hq/sentinel/pkg/engine"
	"actionspec-hq/sentinel/pkg/render"
	"actionspec-hq/sentinel/pkg/source"
	"actionspec-hq/sentinel/pkg/spec/document"
)

var diffFlags struct {
	git       string
	ref       string
	schemaDir string
	format    string
	exitCode  bool
}

var diffCmd = &cobra.Command{
	Use:   "diff [old-spec] <new-spec>",
	Short: "Explain what changed between two spec revisions",
	Long: `Compare two revisions of an ActionSpec document and classify every
field-level change as an error, warning, or informational note.

Both revisions are validated before comparison; the diff never runs on
documents the schema rejects. With --git, the old revision is read from
the repository's object store instead of a second file, so the working
tree can be compared against any committed revision.

Examples:
  # Compare two files
  actionspec diff old.yaml new.yaml

  # Compare the working tree against the last commit
  actionspec diff --git . --ref HEAD~1 deploy/app.yaml

  # Render a PR description
  actionspec diff old.yaml new.yaml --format markdown

  # Gate CI on blocking changes
  actionspec diff old.yaml new.yaml --exit-code`,
	Args: cobra.RangeArgs(1, 2),
	RunE: diffSpecs,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().StringVar(&diffFlags.git, "git", "", "git repository holding the old revision")
	diffCmd.Flags().StringVar(&diffFlags.ref, "ref", "HEAD", "git revision for the old spec (with --git)")
	diffCmd.Flags().StringVar(&diffFlags.schemaDir, "schema-dir", "", "directory of schema definition artifacts (default: built-in schemas)")
	diffCmd.Flags().StringVar(&diffFlags.format, "format", "text", "output format: text, json, markdown")
	diffCmd.Flags().BoolVar(&diffFlags.exitCode, "exit-code", false, "exit non-zero when the report contains blocking errors")
}

func diffSpecs(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(diffFlags.format)
	if err != nil {
		return err
	}

	oldRaw, newRaw, err := readDiffInputs(cmd.Context(), args)
	if err != nil {
		return cli.NewCommandError("diff", err)
	}

	eng := engine.New(newSchemaRegistry(diffFlags.schemaDir))

	newRes, err := eng.ParseAndValidate(newRaw, "")
	if err != nil {
		return cli.NewCommandError("diff", err)
	}
	if !newRes.Valid {
		printSpecErrors("new spec", newRes.Errors)
		return cli.NewCommandError("diff", fmt.Errorf("new spec failed validation"))
	}

	// A missing old side means a first deployment; every field of the
	// new document is reported as added.
	var oldDoc document.Document
	if len(oldRaw) > 0 {
		oldRes, err := eng.ParseAndValidate(oldRaw, "")
		if err != nil {
			return cli.NewCommandError("diff", err)
		}
		if !oldRes.Valid {
			printSpecErrors("old spec", oldRes.Errors)
			return cli.NewCommandError("diff", fmt.Errorf("old spec failed validation"))
		}
		oldDoc = oldRes.Document
	}

	report := eng.Diff(oldDoc, newRes.Document)

	switch format {
	case cli.FormatJSON:
		formatter := &cli.JSONFormatter{Indent: true}
		if err := formatter.FormatTo(os.Stdout, report); err != nil {
			return err
		}
	case cli.FormatMarkdown:
		formatter := &cli.MarkdownFormatter{}
		desc := prDescription{old: oldDoc, new: newRes.Document, report: report}
		if err := formatter.FormatTo(os.Stdout, desc); err != nil {
			return err
		}
	default:
		printReportText(report)
	}

	if diffFlags.exitCode && report.HasBlockingErrors {
		return cli.NewCommandError("diff", fmt.Errorf("blocking changes detected"))
	}
	return nil
}

// readDiffInputs resolves the raw bytes of both revisions. In git mode
// the old side comes from the object store at --ref and a missing file
// there is a first deployment, not an error.
func readDiffInputs(ctx context.Context, args []string) (oldRaw, newRaw []byte, err error) {
	if diffFlags.git != "" {
		if len(args) != 1 {
			return nil, nil, fmt.Errorf("--git takes exactly one repository-relative spec path")
		}

		provider, err := source.NewGitProvider(diffFlags.git)
		if err != nil {
			return nil, nil, err
		}

		oldRaw, err = provider.FetchAt(ctx, filepath.ToSlash(args[0]), diffFlags.ref)
		if err != nil && !errors.Is(err, source.ErrNotFound) {
			return nil, nil, err
		}

		newRaw, err = os.ReadFile(filepath.Join(diffFlags.git, args[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read working tree spec: %w", err)
		}
		return oldRaw, newRaw, nil
	}

	if len(args) != 2 {
		return nil, nil, fmt.Errorf("expected old and new spec paths (or --git with one path)")
	}

	oldRaw, err = os.ReadFile(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read old spec: %w", err)
	}
	newRaw, err = os.ReadFile(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read new spec: %w", err)
	}
	return oldRaw, newRaw, nil
}

func printSpecErrors(side string, msgs []string) {
	fmt.Printf("✗ %s failed validation\n", side)
	for _, msg := range msgs {
		fmt.Printf("    - %s\n", msg)
	}
}

func printReportText(report *analysis.Report) {
	if report.Empty() {
		fmt.Println("No changes detected.")
	}

	for _, c := range report.Errors {
		fmt.Printf("✗ Error: %s (%s)\n", c.Message, c.Path)
	}
	for _, c := range report.Warnings {
		fmt.Printf("⚠  Warning: %s (%s)\n", c.Message, c.Path)
	}
	for _, c := range report.Info {
		fmt.Printf("•  Info: %s (%s)\n", c.Message, c.Path)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %s\n", report.Summary)
}

// prDescription adapts a change-analysis report to the cli.Markdowner
// interface by rendering it as a pull-request description.
type prDescription struct {
	old    document.Document
	new    document.Document
	report *analysis.Report
}

func (p prDescription) Markdown() string {
	return render.PRDescription(p.old, p.new, p.report)
}
