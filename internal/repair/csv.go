package repair

import (
	"encoding/csv"
	"strings"

	"github.com/mcncl/remedy/internal/confidence"
)

// CSVRepairer normalizes ragged rows against the header: short rows are
// padded with empty fields, long rows have their tail folded into the last
// column.
type CSVRepairer struct{}

func NewCSVRepairer() *CSVRepairer {
	return &CSVRepairer{}
}

func (r *CSVRepairer) Repair(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", nil
	}
	if (CSVValidator{}).IsValid(trimmed) {
		return trimmed, nil
	}

	reader := csv.NewReader(strings.NewReader(trimmed))
	reader.FieldsPerRecord = -1 // tolerate ragged rows, we fix them below
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil || len(records) == 0 {
		// Even the lenient reader gave up; return the input as-is.
		return trimmed, nil
	}

	width := len(records[0])
	for i, record := range records {
		switch {
		case len(record) < width:
			for len(record) < width {
				record = append(record, "")
			}
			records[i] = record
		case len(record) > width:
			merged := append(record[:width-1], strings.Join(record[width-1:], " "))
			records[i] = merged
		}
	}

	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	if err := writer.WriteAll(records); err != nil {
		return trimmed, nil
	}
	writer.Flush()
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (r *CSVRepairer) NeedsRepair(content string) bool {
	return !(CSVValidator{}).IsValid(content)
}

func (r *CSVRepairer) Confidence(content string) float64 {
	return confidence.CSV(content)
}

// CSVValidator checks that content reads as CSV with a consistent column
// count.
type CSVValidator struct{}

func (CSVValidator) IsValid(content string) bool {
	return len(CSVValidator{}.Validate(content)) == 0
}

func (CSVValidator) Validate(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{"input is empty"}
	}
	if !strings.ContainsRune(trimmed, ',') {
		return []string{"no field separators found"}
	}

	reader := csv.NewReader(strings.NewReader(trimmed))
	if _, err := reader.ReadAll(); err != nil {
		return []string{err.Error()}
	}
	return nil
}
