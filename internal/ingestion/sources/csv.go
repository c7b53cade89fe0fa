package sources

import (
	"encoding/csv"
	"strings"

	"spaceledger/internal/ingestion/normalize"
)

// Cell is one (header label, value) pair from a data row.
type Cell struct {
	Label string
	Value string
}

// Row is one data row with its physical record number in the file. Cells
// keep file order so columns with duplicate labels stay addressable by
// position.
type Row struct {
	Num   int
	Cells []Cell
}

// At returns the trimmed value at column index i, empty past the row end.
func (r Row) At(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i].Value)
}

// Get returns the value of the first column whose label matches name,
// trying exact equality before substring containment. Labels and name are
// width-folded for comparison.
func (r Row) Get(name string) string {
	key := normalize.Fold(name)
	for _, c := range r.Cells {
		if normalize.Fold(c.Label) == key {
			return strings.TrimSpace(c.Value)
		}
	}
	for _, c := range r.Cells {
		if strings.Contains(normalize.Fold(c.Label), key) {
			return strings.TrimSpace(c.Value)
		}
	}
	return ""
}

// records splits CSV content into raw records. Marketplace exports are
// ragged and loosely quoted, so both checks are relaxed.
func records(content string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// buildRows pairs data records with headers, padding short records and
// dropping fully blank separator rows. firstNum is the record number of
// recs[0], counting the header (and any skipped banner line) as rows.
func buildRows(headers []string, recs [][]string, firstNum int) []Row {
	rows := make([]Row, 0, len(recs))
	for i, rec := range recs {
		if isBlank(rec) {
			continue
		}
		cells := make([]Cell, len(headers))
		for j := range headers {
			if j < len(rec) {
				cells[j] = Cell{Label: headers[j], Value: rec[j]}
			} else {
				cells[j] = Cell{Label: headers[j]}
			}
		}
		// Values past the header width stay addressable by position.
		for j := len(headers); j < len(rec); j++ {
			cells = append(cells, Cell{Value: rec[j]})
		}
		rows = append(rows, Row{Num: firstNum + i, Cells: cells})
	}
	return rows
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
