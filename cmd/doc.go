// Package cmd provides the command-line interface for snippetkit.
//
// This package implements all CLI commands using the Cobra framework.
//
// # Available Commands
//
//   - list: List snippets, optionally by category
//   - show: Print a snippet with its placeholders filled in
//   - search: Find snippets by label, description or id
//   - categories: List categories with snippet counts
//   - popular: Show the curated popular snippets
//   - stats: Show catalog statistics
//   - validate: Lint a catalog and write a JSON report
//   - export: Write the catalog as JSON or YAML
//   - watch: Lint a catalog file whenever it changes
//   - serve: Start the catalog browser with live reload
//   - init: Write a default configuration file
//   - version: Show build information
//
// # Command Examples
//
//	// Fill in a snippet
//	snippetkit show notify-success --set MESSAGE=Saved
//
//	// Lint your own catalog, failing on warnings
//	snippetkit --catalog snippets.yml validate --strict
//
//	// Browse it with live reload
//	snippetkit --catalog snippets.yml serve --port 9000
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (SNIPPETKIT_*, e.g. SNIPPETKIT_SERVER_PORT)
//  3. Configuration file (.snippetkit.yml, --config or SNIPPETKIT_CONFIG_FILE)
//  4. Default values (lowest priority)
//
// Without catalog.path the snippet library embedded in the binary is used.
//
// # Output
//
// Command output goes to the command's output writer and logs go to stderr,
// so JSON and CSV output can be piped.
package cmd
