package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/config"
	"github.com/memora-solutions/snippetkit/internal/validation"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a snippetkit configuration file",
	Long: `Write a .snippetkit.yml with the default settings to the current directory.

With --library, the embedded snippet library is also written to the given file
and the configuration points at it, so you can start editing your own catalog.

Examples:
  snippetkit init                          # Default configuration
  snippetkit init --library snippets.yml   # Start a catalog from the library
  snippetkit init --force                  # Overwrite an existing file`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var (
	initForce   bool
	initLibrary string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initLibrary, "library", "", "Also write the embedded library to this file")

	AddFlagValidation(initCmd, "library", func(path string) error {
		if err := validation.ValidatePath(path); err != nil {
			return err
		}
		return validation.ValidateFileExtension(path, validation.CatalogExtensions)
	})
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	out := cmd.OutOrStdout()

	target := config.DefaultConfigFile
	if cfgFile != "" {
		target = cfgFile
	}
	if !initForce && fileExists(target) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}

	if initLibrary != "" {
		if err := writeLibrary(initLibrary, initForce); err != nil {
			return err
		}
		cfg.Catalog.Path = initLibrary
		fmt.Fprintf(out, "✓ Wrote snippet library to %s\n", initLibrary)
	}

	if err := config.WriteFile(target, cfg, initForce); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote configuration to %s\n", target)
	return nil
}

func writeLibrary(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	doc, err := catalog.LoadDefault()
	if err != nil {
		return err
	}
	return catalog.WriteFile(path, doc, catalog.FormatAuto)
}

func fileExists(path string) bool {
	return ValidateFileExists(path) == nil
}
