package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/memora-solutions/snippetkit/internal/catalog"
	"github.com/memora-solutions/snippetkit/internal/config"
)

// ConfigFileEnv names the environment variable selecting the config file.
const ConfigFileEnv = "SNIPPETKIT_CONFIG_FILE"

var (
	cfgFile string
	// configErr holds the failure to read an existing or explicitly
	// requested config file.
	configErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snippetkit",
	Short: "Browse, fill in and lint reusable code snippets",
	Long: `snippetkit manages a library of reusable code snippets. Each snippet is a
code template with {{TOKEN}} placeholders that are filled in with your values.

Key Features:
  • Embedded snippet library, or your own JSON/YAML catalog
  • Placeholder expansion with values and defaults
  • Search, categories and a curated popular list
  • Catalog linter with JSON report export
  • Catalog browser with live reload over WebSocket

Quick Start:
  snippetkit list                         List all snippets
  snippetkit show notify-success --set MESSAGE=Saved
  snippetkit validate                     Lint the catalog
  snippetkit serve                        Browse the catalog in a browser

Command Aliases (for faster typing):
  list (l), show (s), search (find), categories (cats), validate (lint)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		initConfig(cmd)
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .snippetkit.yml, can also use "+ConfigFileEnv+" env var)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("catalog", "", "catalog document (default is the embedded library)")
	rootCmd.PersistentFlags().String("catalog-format", "", "catalog format (auto, json, yaml)")

	AddFlagValidation(rootCmd, "catalog-format", func(format string) error {
		return ValidateFormatWithSuggestion(format, []string{"auto", "json", "yaml", "yml"})
	})

	bindFlag(rootCmd, "log-level", "log.level")
	bindFlag(rootCmd, "catalog", "catalog.path")
	bindFlag(rootCmd, "catalog-format", "catalog.format")
}

// flagBindings maps flag names to configuration keys, per command. Several
// commands bind the same key, so only the root's and the running command's
// bindings are applied.
var flagBindings = map[*cobra.Command]map[string]string{}

// bindFlag records a flag to configuration key binding applied by initConfig.
func bindFlag(cmd *cobra.Command, flagName, key string) {
	if flagBindings[cmd] == nil {
		flagBindings[cmd] = make(map[string]string)
	}
	flagBindings[cmd][flagName] = key
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.PersistentFlags().Lookup(name)
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. SNIPPETKIT_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .snippetkit.yml in current directory
//
// It runs before every command. Flags are bound here rather than in init so
// that a reset viper instance still sees them.
func initConfig(cmd *cobra.Command) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(ConfigFileEnv); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".snippetkit")
	}

	config.BindEnv(viper.GetViper())

	for _, owner := range []*cobra.Command{rootCmd, cmd} {
		for flagName, key := range flagBindings[owner] {
			if flag := lookupFlag(owner, flagName); flag != nil {
				_ = viper.BindPFlag(key, flag)
			}
		}
	}

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		// Without an explicit file a missing .snippetkit.yml is fine.
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			configErr = fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads and validates the merged configuration.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// catalogSource returns where the configured catalog is loaded from.
func catalogSource(cfg *config.Config) (catalog.Source, error) {
	if cfg.Catalog.Path == "" {
		return catalog.DefaultSource(), nil
	}
	format, err := catalog.ParseFormat(cfg.Catalog.Format)
	if err != nil {
		return nil, err
	}
	return catalog.FileSource(cfg.Catalog.Path, format), nil
}

// openStore loads the configured catalog into a store.
func openStore(cfg *config.Config) (*catalog.Store, error) {
	source, err := catalogSource(cfg)
	if err != nil {
		return nil, err
	}
	store, err := catalog.NewStore(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return store, nil
}

// loadCatalog is loadConfig followed by openStore, for read-only commands.
func loadCatalog() (*config.Config, *catalog.Catalog, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store.Current(), nil
}
