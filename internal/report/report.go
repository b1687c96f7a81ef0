// Package report renders import results for terminal display and
// programmatic consumption.
//
// Supported output formats:
//   - Console: human-readable summary and transaction table
//   - JSON: structured output for scripting
//   - CSV: transaction rows for spreadsheet import
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"statement-import-service/internal/models"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ParseFormat parses an output format from a CLI flag value
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if !format.IsValid() {
		return "", fmt.Errorf("invalid output format %q: must be console, json or csv", s)
	}
	return format, nil
}

// Reporter renders import results to a writer
type Reporter struct {
	format OutputFormat
}

// NewReporter creates a reporter for the given format
func NewReporter(format OutputFormat) (*Reporter, error) {
	if !format.IsValid() {
		return nil, fmt.Errorf("invalid output format: %s", format)
	}
	return &Reporter{format: format}, nil
}

// Write renders the import result to the writer in the configured format
func (r *Reporter) Write(w io.Writer, result *models.ImportResult) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		return writeCSV(w, result)
	default:
		return writeConsole(w, result)
	}
}

func writeJSON(w io.Writer, result *models.ImportResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeCSV(w io.Writer, result *models.ImportResult) error {
	writer := csv.NewWriter(w)

	header := []string{"date", "amount", "type", "details", "category_id", "confidence", "needs_review"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, tx := range result.NewTransactions {
		categoryID := ""
		if tx.CategoryID != nil {
			categoryID = fmt.Sprintf("%d", *tx.CategoryID)
		}
		row := []string{
			tx.Date.Format("2006-01-02"),
			tx.Amount.String(),
			tx.Type.String(),
			tx.Details,
			categoryID,
			fmt.Sprintf("%.2f", tx.Confidence),
			fmt.Sprintf("%t", tx.NeedsReview),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeConsole(w io.Writer, result *models.ImportResult) error {
	var sb strings.Builder

	sb.WriteString("=== Import Result ===\n")
	if result.BankID != "" {
		fmt.Fprintf(&sb, "Bank:              %s\n", result.BankID)
	} else {
		sb.WriteString("Bank:              (not detected, AI parse)\n")
	}
	fmt.Fprintf(&sb, "Total rows:        %d\n", result.Total)
	fmt.Fprintf(&sb, "New transactions:  %d\n", len(result.NewTransactions))
	fmt.Fprintf(&sb, "Duplicates:        %d\n", result.Duplicates)
	fmt.Fprintf(&sb, "Ready to commit:   %d\n", result.ReadyCount())
	fmt.Fprintf(&sb, "Errors:            %d\n", len(result.Errors))

	if len(result.NewTransactions) > 0 {
		sb.WriteString("\nDate        Amount          Type     Details\n")
		sb.WriteString(strings.Repeat("-", 70) + "\n")
		for _, tx := range result.NewTransactions {
			flag := " "
			if tx.NeedsReview {
				flag = "?"
			}
			fmt.Fprintf(&sb, "%s  %14s  %-7s %s %s\n",
				tx.Date.Format("2006-01-02"),
				tx.Amount.String(),
				tx.Type.String(),
				flag,
				truncate(tx.Details, 40))
		}
	}

	if len(result.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&sb, "  - %s\n", e)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
