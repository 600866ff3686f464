package config

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/memora-solutions/snippetkit/internal/errors"
)

const fileHeader = `# snippetkit configuration
# Every setting can be overridden with a SNIPPETKIT_ environment variable,
# e.g. SNIPPETKIT_SERVER_PORT=9000.
`

// Marshal renders config as YAML with the explanatory header.
func Marshal(config *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(config); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to encode configuration")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "failed to encode configuration")
	}
	return buf.Bytes(), nil
}

// WriteFile writes config to filename. An existing file is only replaced
// when force is set.
func WriteFile(filename string, config *Config, force bool) error {
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return errors.NewConfigError(errors.ErrCodeConfigInvalid,
				"configuration file already exists (use --force to overwrite)").WithPath(filename)
		}
	}

	data, err := Marshal(config)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write configuration", err).WithPath(filename)
	}
	return nil
}
