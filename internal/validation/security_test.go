package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative file", "library.json", false},
		{"nested relative", "catalogs/budibase.yaml", false},
		{"dot prefix", "./library.json", false},
		{"absolute temp path", "/tmp/snippets/library.json", false},
		{"dots inside name", "my..library.json", false},
		{"inner traversal that stays inside", "a/../library.json", false},
		{"empty", "", true},
		{"parent traversal", "../library.json", true},
		{"deep traversal", "catalogs/../../etc/library.json", true},
		{"bare parent", "..", true},
		{"system directory", "/etc/passwd", true},
		{"proc", "/proc/self/environ", true},
		{"etc directory itself", "/etc", true},
		{"shell metacharacter", "library.json; rm -rf /", true},
		{"command substitution", "$(whoami).json", true},
		{"null byte", "library\x00.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOrigin(t *testing.T) {
	allowed := []string{"localhost:8088", "127.0.0.1:8088", "https://snippets.example.com"}

	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{"host match", "http://localhost:8088", false},
		{"ip host match", "http://127.0.0.1:8088", false},
		{"full origin match", "https://snippets.example.com", false},
		{"https with allowed host", "https://localhost:8088", false},
		{"empty", "", true},
		{"other port", "http://localhost:9999", true},
		{"other host", "http://evil.example.com", true},
		{"file scheme", "file:///etc/passwd", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"malformed", "http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrigin(tt.origin, allowed)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFileExtension(t *testing.T) {
	tests := []struct {
		filename string
		wantErr  bool
	}{
		{"library.json", false},
		{"library.YAML", false},
		{"dir/library.yml", false},
		{"library.toml", true},
		{"library", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			err := ValidateFileExtension(tt.filename, CatalogExtensions)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
