// Package config provides configuration management for snippetkit using
// Viper for loading from files, environment variables and command-line flags.
//
// Settings come from .snippetkit.yml (or the file named by --config or
// SNIPPETKIT_CONFIG_FILE), SNIPPETKIT_ prefixed environment variables and
// flags bound by the cmd package. Load applies defaults and validates the
// result.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/logging"
	"github.com/memora-solutions/snippetkit/internal/validation"
)

// Defaults applied by Load when a setting is absent.
const (
	DefaultConfigFile = ".snippetkit.yml"
	DefaultHost       = "localhost"
	DefaultPort       = 8088
	DefaultReportPath = "validation-report.json"
	DefaultDebounce   = 300 * time.Millisecond
	MaxDebounce       = time.Minute
)

type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

type CatalogConfig struct {
	// Path of the catalog document. Empty selects the embedded library.
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

type ValidationConfig struct {
	ReportPath string `yaml:"report_path" mapstructure:"report_path"`
	Strict     bool   `yaml:"strict" mapstructure:"strict"`
	NoReport   bool   `yaml:"no_report" mapstructure:"no_report"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// EnvPrefix prefixes environment variable overrides, e.g.
// SNIPPETKIT_SERVER_PORT.
const EnvPrefix = "SNIPPETKIT"

// Keys lists every configuration key. BindEnv binds each one so environment
// overrides apply even when no config file mentions the key.
var Keys = []string{
	"catalog.path",
	"catalog.format",
	"server.host",
	"server.port",
	"server.allowed_origins",
	"validation.report_path",
	"validation.strict",
	"validation.no_report",
	"watch.debounce",
	"log.level",
	"log.format",
}

// BindEnv makes v read SNIPPETKIT_ prefixed environment variables.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range Keys {
		_ = v.BindEnv(key)
	}
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{Format: "auto"},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Validation: ValidationConfig{ReportPath: DefaultReportPath},
		Watch:      WatchConfig{Debounce: DefaultDebounce},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, applies defaults and validates it.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	// Slices set through env or flags arrive as a single string.
	if v.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	applyDefaults(&config, v)

	if err := validateConfig(&config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "invalid configuration")
	}

	return &config, nil
}

func applyDefaults(config *Config, v *viper.Viper) {
	defaults := Default()

	if config.Catalog.Format == "" {
		config.Catalog.Format = defaults.Catalog.Format
	}
	if config.Server.Host == "" {
		config.Server.Host = defaults.Server.Host
	}
	// Port 0 is kept when set explicitly so tests can ask for a free port.
	if !v.IsSet("server.port") {
		config.Server.Port = defaults.Server.Port
	}
	if config.Validation.ReportPath == "" {
		config.Validation.ReportPath = defaults.Validation.ReportPath
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = defaults.Watch.Debounce
	}
	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
	if config.Log.Format == "" {
		config.Log.Format = defaults.Log.Format
	}
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateCatalogConfig(&config.Catalog); err != nil {
		return fmt.Errorf("catalog config: %w", err)
	}
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateValidationConfig(&config.Validation); err != nil {
		return fmt.Errorf("validation config: %w", err)
	}
	if config.Watch.Debounce < 0 || config.Watch.Debounce > MaxDebounce {
		return fmt.Errorf("watch config: debounce %s is not in range 0-%s", config.Watch.Debounce, MaxDebounce)
	}
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

func validateCatalogConfig(config *CatalogConfig) error {
	switch strings.ToLower(config.Format) {
	case "auto", "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown format %q (supported: auto, json, yaml)", config.Format)
	}

	if config.Path == "" {
		return nil
	}
	if err := validation.ValidatePath(config.Path); err != nil {
		return fmt.Errorf("invalid path '%s': %w", config.Path, err)
	}
	if strings.ToLower(config.Format) == "auto" {
		if err := validation.ValidateFileExtension(config.Path, validation.CatalogExtensions); err != nil {
			return fmt.Errorf("invalid path '%s': %w", config.Path, err)
		}
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", " ", "/"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %q", char)
		}
	}

	for _, origin := range config.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("allowed_origins contains an empty entry")
		}
	}
	return nil
}

func validateValidationConfig(config *ValidationConfig) error {
	if config.NoReport {
		return nil
	}
	if err := validation.ValidatePath(config.ReportPath); err != nil {
		return fmt.Errorf("invalid report_path '%s': %w", config.ReportPath, err)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	switch config.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (supported: text, json)", config.Format)
	}
}

// Addr returns the host:port the server listens on.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Origins returns the origins allowed to open a WebSocket. Without an
// explicit list, the server's own address under localhost and 127.0.0.1 is
// allowed.
func (c *ServerConfig) Origins() []string {
	if len(c.AllowedOrigins) > 0 {
		return append([]string{}, c.AllowedOrigins...)
	}

	port := strconv.Itoa(c.Port)
	origins := []string{
		net.JoinHostPort("localhost", port),
		net.JoinHostPort("127.0.0.1", port),
	}
	if c.Host != "" && c.Host != "localhost" && c.Host != "127.0.0.1" && c.Host != "0.0.0.0" {
		origins = append(origins, net.JoinHostPort(c.Host, port))
	}
	return origins
}

// Logger builds the logger described by the log section.
func (c *LogConfig) Logger() *logging.StructuredLogger {
	level, _ := logging.ParseLevel(c.Level)
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = c.Format
	return logging.NewLogger(cfg)
}
