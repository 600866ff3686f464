package validation

import (
	"encoding/json"
	"math"
	"os"
	"time"
	"unicode/utf8"

	"github.com/memora-solutions/snippetkit/internal/errors"
	"github.com/memora-solutions/snippetkit/internal/types"
)

// Statistics summarizes a catalog document.
type Statistics struct {
	ByCategory          map[types.CategoryID]int `json:"by_category"`
	WithPlaceholders    int                      `json:"with_placeholders"`
	WithoutPlaceholders int                      `json:"without_placeholders"`
	TotalCodeLength     int                      `json:"total_code_length"`
	AvgCodeLength       int                      `json:"avg_code_length"`
}

// GenerateStats computes document statistics. Snippets without a category are
// left out of ByCategory; code length is counted in runes.
func GenerateStats(doc *types.Document) Statistics {
	stats := Statistics{ByCategory: make(map[types.CategoryID]int)}
	if doc == nil {
		return stats
	}

	for _, s := range doc.Snippets {
		if s.Category != "" {
			stats.ByCategory[s.Category]++
		}
		if len(s.Placeholders) > 0 {
			stats.WithPlaceholders++
		} else {
			stats.WithoutPlaceholders++
		}
		stats.TotalCodeLength += utf8.RuneCountInString(s.Code)
	}

	if n := len(doc.Snippets); n > 0 {
		stats.AvgCodeLength = int(math.Round(float64(stats.TotalCodeLength) / float64(n)))
	}
	return stats
}

// ExportReport is the persisted form of a lint run.
type ExportReport struct {
	Timestamp      time.Time  `json:"timestamp"`
	LibraryVersion string     `json:"library_version"`
	Passed         bool       `json:"passed"`
	Validation     *Report    `json:"validation"`
	Statistics     Statistics `json:"statistics"`
}

// NewExport bundles a report and statistics for writing. Passed follows
// the same strictness the run was judged with.
func NewExport(report *Report, stats Statistics, version string, strict bool, now time.Time) ExportReport {
	return ExportReport{
		Timestamp:      now.UTC(),
		LibraryVersion: version,
		Passed:         report.Passed(strict),
		Validation:     report,
		Statistics:     stats,
	}
}

// WriteReport writes the report as indented JSON.
func (e ExportReport) WriteReport(path string) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeInternalError, "failed to encode validation report", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeWriteFailed, "failed to write validation report", err).WithPath(path)
	}
	return nil
}
