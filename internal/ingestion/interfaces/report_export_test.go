package interfaces

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"spaceledger/internal/ingestion/application"
	"spaceledger/internal/ingestion/sources"
)

func sampleReport() application.Report {
	return application.Report{
		RunID:         "run-9",
		Source:        "spacee",
		FileName:      "spacee_june.csv",
		ContentHash:   "00000000deadbeef",
		Outcome:       "partial",
		RowsParsed:    4,
		Inserted:      2,
		Skipped:       1,
		Unmapped:      1,
		UnmappedNames: []string{"駒込サロン"},
		Errors:        []sources.RowError{{Row: 3, Message: "invalid usage date \"2024/13/1\""}},
		Warnings:      []sources.Warning{{Row: 4, Message: "negative amount clamped to zero"}},
	}
}

func TestBuildRunReportXLSX(t *testing.T) {
	data, err := BuildRunReportXLSX(sampleReport())
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected xlsx bytes")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen xlsx: %v", err)
	}
	defer f.Close()

	outcome, err := f.GetCellValue("summary", "B7")
	if err != nil {
		t.Fatalf("read outcome cell: %v", err)
	}
	if outcome != "partial" {
		t.Fatalf("expected outcome partial, got %q", outcome)
	}
	kind, err := f.GetCellValue("issues", "A2")
	if err != nil {
		t.Fatalf("read issue cell: %v", err)
	}
	if kind != "error" {
		t.Fatalf("expected first issue kind error, got %q", kind)
	}
}

func TestBuildRunReportPDF(t *testing.T) {
	data, err := BuildRunReportPDF(sampleReport())
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("expected a pdf header")
	}
}
