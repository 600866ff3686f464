package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/logging"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, config *Config)
	}{
		{
			name:  "defaults",
			setup: func() { viper.Reset() },
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, Default(), config)
			},
		},
		{
			name: "explicit values",
			setup: func() {
				viper.Reset()
				viper.Set("catalog.path", "catalogs/library.yaml")
				viper.Set("catalog.format", "yaml")
				viper.Set("server.host", "0.0.0.0")
				viper.Set("server.port", 9000)
				viper.Set("server.allowed_origins", []string{"snippets.example.com"})
				viper.Set("validation.strict", true)
				viper.Set("validation.report_path", "out/report.json")
				viper.Set("watch.debounce", "1s")
				viper.Set("log.level", "debug")
				viper.Set("log.format", "json")
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "catalogs/library.yaml", config.Catalog.Path)
				assert.Equal(t, "yaml", config.Catalog.Format)
				assert.Equal(t, "0.0.0.0", config.Server.Host)
				assert.Equal(t, 9000, config.Server.Port)
				assert.Equal(t, []string{"snippets.example.com"}, config.Server.AllowedOrigins)
				assert.True(t, config.Validation.Strict)
				assert.False(t, config.Validation.NoReport)
				assert.Equal(t, "out/report.json", config.Validation.ReportPath)
				assert.Equal(t, time.Second, config.Watch.Debounce)
				assert.Equal(t, "debug", config.Log.Level)
				assert.Equal(t, "json", config.Log.Format)
			},
		},
		{
			name: "explicit port zero is kept",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", 0)
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, 0, config.Server.Port)
			},
		},
		{
			name: "origins from a comma separated string",
			setup: func() {
				viper.Reset()
				viper.Set("server.allowed_origins", "a.example.com,b.example.com")
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, []string{"a.example.com", "b.example.com"}, config.Server.AllowedOrigins)
			},
		},
		{
			name: "invalid port type",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", "invalid_port")
			},
			expectError: true,
		},
		{
			name: "port out of range",
			setup: func() {
				viper.Reset()
				viper.Set("server.port", 70000)
			},
			expectError: true,
		},
		{
			name: "dangerous host",
			setup: func() {
				viper.Reset()
				viper.Set("server.host", "localhost; rm -rf /")
			},
			expectError: true,
		},
		{
			name: "catalog path traversal",
			setup: func() {
				viper.Reset()
				viper.Set("catalog.path", "../../etc/library.json")
			},
			expectError: true,
		},
		{
			name: "catalog extension",
			setup: func() {
				viper.Reset()
				viper.Set("catalog.path", "library.toml")
			},
			expectError: true,
		},
		{
			name: "extension ignored with explicit format",
			setup: func() {
				viper.Reset()
				viper.Set("catalog.path", "library.txt")
				viper.Set("catalog.format", "json")
			},
			check: func(t *testing.T, config *Config) {
				assert.Equal(t, "library.txt", config.Catalog.Path)
			},
		},
		{
			name: "unknown catalog format",
			setup: func() {
				viper.Reset()
				viper.Set("catalog.format", "xml")
			},
			expectError: true,
		},
		{
			name: "report path traversal",
			setup: func() {
				viper.Reset()
				viper.Set("validation.report_path", "../report.json")
			},
			expectError: true,
		},
		{
			name: "report path ignored without report",
			setup: func() {
				viper.Reset()
				viper.Set("validation.report_path", "../report.json")
				viper.Set("validation.no_report", true)
			},
			check: func(t *testing.T, config *Config) {
				assert.True(t, config.Validation.NoReport)
			},
		},
		{
			name: "negative debounce",
			setup: func() {
				viper.Reset()
				viper.Set("watch.debounce", "-1s")
			},
			expectError: true,
		},
		{
			name: "unknown log level",
			setup: func() {
				viper.Reset()
				viper.Set("log.level", "verbose")
			},
			expectError: true,
		},
		{
			name: "unknown log format",
			setup: func() {
				viper.Reset()
				viper.Set("log.format", "xml")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer viper.Reset()

			config, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  path: library.yml
server:
  port: 9100
watch:
  debounce: 50ms
`), 0o644))

	t.Setenv("SNIPPETKIT_SERVER_PORT", "9200")

	v := viper.New()
	v.SetConfigFile(path)
	BindEnv(v)
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "library.yml", config.Catalog.Path)
	assert.Equal(t, 9200, config.Server.Port, "environment overrides the file")
	assert.Equal(t, 50*time.Millisecond, config.Watch.Debounce)
	assert.Equal(t, DefaultHost, config.Server.Host)
}

func TestBindEnvWithoutFile(t *testing.T) {
	t.Setenv("SNIPPETKIT_LOG_LEVEL", "warn")
	t.Setenv("SNIPPETKIT_VALIDATION_STRICT", "true")

	v := viper.New()
	BindEnv(v)

	config, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "warn", config.Log.Level)
	assert.True(t, config.Validation.Strict)
	assert.Equal(t, DefaultPort, config.Server.Port)
}

func TestServerConfig_Addr(t *testing.T) {
	config := &ServerConfig{Host: "localhost", Port: 8088}
	assert.Equal(t, "localhost:8088", config.Addr())

	config = &ServerConfig{Host: "::1", Port: 80}
	assert.Equal(t, "[::1]:80", config.Addr())
}

func TestServerConfig_Origins(t *testing.T) {
	config := &ServerConfig{Host: "localhost", Port: 8088}
	assert.Equal(t, []string{"localhost:8088", "127.0.0.1:8088"}, config.Origins())

	config = &ServerConfig{Host: "snippets.local", Port: 9000}
	assert.Equal(t, []string{"localhost:9000", "127.0.0.1:9000", "snippets.local:9000"}, config.Origins())

	config = &ServerConfig{Host: "localhost", Port: 8088, AllowedOrigins: []string{"https://a.example.com"}}
	origins := config.Origins()
	assert.Equal(t, []string{"https://a.example.com"}, origins)
	origins[0] = "changed"
	assert.Equal(t, "https://a.example.com", config.AllowedOrigins[0])
}

func TestLogConfig_Logger(t *testing.T) {
	logger := (&LogConfig{Level: "debug", Format: "json"}).Logger()
	require.NotNil(t, logger)

	var _ logging.Logger = logger
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	require.NoError(t, WriteFile(path, Default(), false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# snippetkit configuration")
	assert.Contains(t, string(data), "debounce: 300ms")

	err = WriteFile(path, Default(), false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	custom := Default()
	custom.Server.Port = 9999
	require.NoError(t, WriteFile(path, custom, true))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	loaded, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.Server.Port)
	assert.Equal(t, DefaultDebounce, loaded.Watch.Debounce)

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "x.yml"), Default(), false)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, errors.ErrorTypeIO, e.Type)
}
