// Package report serializes run output for external consumers. The
// SuiteResult and ScoreSummary shapes defined in the domain package are the
// contract downstream report and badge renderers consume; this package only
// writes them out as JSON and CSV, it renders nothing.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kindershield/kindershield/internal/domain"
)

// Document is the top-level JSON export: run metadata, the frozen result
// tree, and its derived summary.
type Document struct {
	Metadata Metadata            `json:"metadata"`
	Result   *domain.SuiteResult `json:"result"`
	Summary  domain.ScoreSummary `json:"summary"`
}

// Metadata identifies the run for archival exports.
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Version     string    `json:"version,omitempty"`
}

// WriteJSON writes the full result document as indented JSON.
func WriteJSON(w io.Writer, result *domain.SuiteResult, summary domain.ScoreSummary, meta Metadata) error {
	if result == nil {
		return domain.ErrNoCaseResults
	}
	doc := Document{Metadata: meta, Result: result, Summary: summary}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode result document: %w", err)
	}
	return nil
}
