package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/types"
)

// Format is the encoding of a persisted catalog document.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultLibraryName is the file name of the embedded snippet library.
const DefaultLibraryName = "budibase-snippets.json"

//go:embed library/budibase-snippets.json
var library embed.FS

// ParseFormat converts a user supplied format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.NewParseError(errors.ErrCodeUnsupported,
			fmt.Sprintf("unknown catalog format %q (supported: auto, json, yaml)", name),
			errors.ErrUnsupportedFormat)
	}
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// sniffFormat picks JSON when the first non-blank byte opens an object.
func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes a catalog document. A document without a snippets array is
// rejected; nothing else about the content is checked here.
func Parse(data []byte, format Format) (*types.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.NewParseError(errors.ErrCodeInvalidDocument,
			"catalog document is empty", errors.ErrEmptyDocument)
	}

	if format == FormatAuto || format == "" {
		format = sniffFormat(data)
	}

	var doc types.Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewParseError(errors.ErrCodeInvalidDocument,
				"invalid JSON catalog", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewParseError(errors.ErrCodeInvalidDocument,
				"invalid YAML catalog", err)
		}
	default:
		return nil, errors.NewParseError(errors.ErrCodeUnsupported,
			fmt.Sprintf("unknown catalog format %q", format), errors.ErrUnsupportedFormat)
	}

	if doc.Snippets == nil {
		return nil, errors.NewParseError(errors.ErrCodeInvalidDocument,
			"snippets array missing or invalid", errors.ErrMissingSnippets)
	}

	return &doc, nil
}

// Load reads and decodes the catalog document at path. The format is taken
// from the file extension, falling back to content sniffing.
func Load(path string) (*types.Document, error) {
	return LoadFormat(path, FormatAuto)
}

// LoadFormat is Load with an explicit format. FormatAuto uses the file
// extension.
func LoadFormat(path string, format Format) (*types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeReadFailed
		if os.IsNotExist(err) {
			code = errors.ErrCodeFileNotFound
		}
		return nil, errors.NewIOError(code, "failed to read catalog", err).WithPath(path)
	}

	if format == FormatAuto || format == "" {
		format = DetectFormat(path)
	}

	doc, err := Parse(data, format)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.WithPath(path)
		}
		return nil, err
	}
	return doc, nil
}

// LoadDefault decodes the snippet library compiled into the binary.
func LoadDefault() (*types.Document, error) {
	data, err := library.ReadFile("library/" + DefaultLibraryName)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternalError,
			"embedded library missing", err)
	}
	return Parse(data, FormatJSON)
}

// Encode writes doc in the given format. FormatAuto writes JSON.
func Encode(w io.Writer, doc *types.Document, format Format) error {
	switch format {
	case FormatJSON, FormatAuto, "":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(doc); err != nil {
			return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to encode catalog", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to encode catalog", err)
		}
		if err := encoder.Close(); err != nil {
			return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to encode catalog", err)
		}
	default:
		return errors.NewParseError(errors.ErrCodeUnsupported,
			fmt.Sprintf("unknown catalog format %q", format), errors.ErrUnsupportedFormat)
	}
	return nil
}

// WriteFile encodes doc to path, choosing the format from the extension
// when format is FormatAuto.
func WriteFile(path string, doc *types.Document, format Format) error {
	if format == FormatAuto || format == "" {
		format = DetectFormat(path)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write catalog", err).WithPath(path)
	}
	return nil
}
