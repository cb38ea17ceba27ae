// Package report renders audit findings as an XLSX workbook for download.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/keiyaku/internal/models"
)

const (
	summarySheet  = "Summary"
	findingsSheet = "Findings"
)

var findingsHeader = []string{
	"Document ID", "Risk Type", "Severity", "Title", "Description",
	"Evidence", "Page", "Char Start", "Char End", "Confidence", "Method",
}

// WriteFindings writes a two-sheet workbook: per-severity totals on the
// summary sheet, one row per finding on the detail sheet.
func WriteFindings(w io.Writer, findings []*models.Finding) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, findings); err != nil {
		return err
	}
	if err := writeDetail(f, findings); err != nil {
		return err
	}

	// The default sheet is replaced by the two we create.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, findings []*models.Finding) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	counts := map[models.Severity]int{}
	docs := map[string]bool{}
	for _, finding := range findings {
		counts[finding.Severity]++
		docs[finding.DocumentID] = true
	}

	rows := [][]any{
		{"Total findings", len(findings)},
		{"Documents audited", len(docs)},
		{"Critical", counts[models.SeverityCritical]},
		{"High", counts[models.SeverityHigh]},
		{"Medium", counts[models.SeverityMedium]},
		{"Low", counts[models.SeverityLow]},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return nil
}

func writeDetail(f *excelize.File, findings []*models.Finding) error {
	if _, err := f.NewSheet(findingsSheet); err != nil {
		return fmt.Errorf("create findings sheet: %w", err)
	}

	header := make([]any, len(findingsHeader))
	for i, h := range findingsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(findingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, finding := range findings {
		row := []any{
			finding.DocumentID,
			finding.RiskType,
			string(finding.Severity),
			finding.Title,
			finding.Description,
			finding.EvidenceText,
			optional(finding.PageNumber),
			optional(finding.CharStart),
			optional(finding.CharEnd),
			finding.Confidence,
			finding.DetectionMethod,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(findingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write finding row: %w", err)
		}
	}
	return nil
}

// optional renders a nullable offset: empty cell when absent.
func optional(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
