/*
Package cli provides command-line interface utilities for Sentinel.

The cli package includes output formatters, error types, and common CLI
helpers used by the actionspec command.

Output Formatting:

The cli package supports multiple output formats (text, JSON, Markdown) for
displaying command results:

	formatter := cli.NewFormatter(cli.FormatJSON)
	data := MyCommandResult{...}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Markdown output is only available for results that implement the Markdowner
interface, such as change-analysis reports rendered as PR descriptions.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
