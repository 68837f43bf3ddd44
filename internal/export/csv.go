package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/recopesa/intake-backend/internal/domain"
)

// DetailCSV renders the same rows as the workbook's detail sheet, as UTF-8
// CSV with a BOM so spreadsheet tools pick the right encoding.
func DetailCSV(reports []*domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(detailHeaders); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range detailRows(reports) {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
