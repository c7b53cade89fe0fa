// Package interfaces renders import run reports for operators.
package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"spaceledger/internal/ingestion/application"
)

// BuildRunReportPDF renders a minimal PDF for one import run.
func BuildRunReportPDF(report application.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Import Run Report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", report.RunID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Source: %s", report.Source))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("File: %s", report.FileName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Content Hash: %s", report.ContentHash))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Outcome: %s", report.Outcome))
	pdf.Ln(5)
	if !report.StartedAt.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Started: %s", report.StartedAt.Format(time.RFC3339)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Duration: %s", report.Duration.Round(time.Millisecond)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Rows Parsed: %d", report.RowsParsed))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Inserted: %d", report.Inserted))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Duplicates: %d", report.Skipped))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Unmapped: %d", report.Unmapped))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Row Errors: %d", len(report.Errors)))
	pdf.Ln(8)

	if len(report.Errors) > 0 || len(report.Warnings) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(25, 6, "Kind", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, "Row", "1", 0, "C", false, 0, "")
		pdf.CellFormat(145, 6, "Message", "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, e := range report.Errors {
			pdf.CellFormat(25, 6, "error", "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", e.Row), "1", 0, "R", false, 0, "")
			pdf.CellFormat(145, 6, e.Message, "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
		for _, w := range report.Warnings {
			pdf.CellFormat(25, 6, "warning", "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", w.Row), "1", 0, "R", false, 0, "")
			pdf.CellFormat(145, 6, w.Message, "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildRunReportXLSX renders a minimal XLSX for one import run.
func BuildRunReportXLSX(report application.Report) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	issuesSheet := "issues"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(issuesSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Import Run Report")
	_ = f.SetCellValue(summarySheet, "A3", "Run")
	_ = f.SetCellValue(summarySheet, "B3", report.RunID)
	_ = f.SetCellValue(summarySheet, "A4", "Source")
	_ = f.SetCellValue(summarySheet, "B4", report.Source)
	_ = f.SetCellValue(summarySheet, "A5", "File")
	_ = f.SetCellValue(summarySheet, "B5", report.FileName)
	_ = f.SetCellValue(summarySheet, "A6", "Content Hash")
	_ = f.SetCellValue(summarySheet, "B6", report.ContentHash)
	_ = f.SetCellValue(summarySheet, "A7", "Outcome")
	_ = f.SetCellValue(summarySheet, "B7", report.Outcome)
	_ = f.SetCellValue(summarySheet, "A8", "Rows Parsed")
	_ = f.SetCellValue(summarySheet, "B8", report.RowsParsed)
	_ = f.SetCellValue(summarySheet, "A9", "Inserted")
	_ = f.SetCellValue(summarySheet, "B9", report.Inserted)
	_ = f.SetCellValue(summarySheet, "A10", "Duplicates")
	_ = f.SetCellValue(summarySheet, "B10", report.Skipped)
	_ = f.SetCellValue(summarySheet, "A11", "Unmapped")
	_ = f.SetCellValue(summarySheet, "B11", report.Unmapped)
	_ = f.SetCellValue(summarySheet, "A12", "Row Errors")
	_ = f.SetCellValue(summarySheet, "B12", len(report.Errors))
	for i, name := range report.UnmappedNames {
		row := 14 + i
		if i == 0 {
			_ = f.SetCellValue(summarySheet, "A13", "Unmapped Listings")
		}
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), name)
	}

	_ = f.SetCellValue(issuesSheet, "A1", "Kind")
	_ = f.SetCellValue(issuesSheet, "B1", "Row")
	_ = f.SetCellValue(issuesSheet, "C1", "Message")
	row := 2
	for _, e := range report.Errors {
		_ = f.SetCellValue(issuesSheet, fmt.Sprintf("A%d", row), "error")
		_ = f.SetCellValue(issuesSheet, fmt.Sprintf("B%d", row), e.Row)
		_ = f.SetCellValue(issuesSheet, fmt.Sprintf("C%d", row), e.Message)
		row++
	}
	for _, w := range report.Warnings {
		_ = f.SetCellValue(issuesSheet, fmt.Sprintf("A%d", row), "warning")
		_ = f.SetCellValue(issuesSheet, fmt.Sprintf("B%d", row), w.Row)
		_ = f.SetCellValue(issuesSheet, fmt.Sprintf("C%d", row), w.Message)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
