package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/recopesa/intake-backend/internal/domain"
)

func sampleReports() []*domain.Report {
	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	maize := &domain.Product{ID: "p1", Name: "Carton"}
	glass := &domain.Product{ID: "p2", Name: "Vidrio"}
	return []*domain.Report{
		{
			ID:           "r1",
			ReportDate:   date,
			TicketNumber: "TK-000001",
			PlateNumber:  "P-111",
			DriverName:   "Ana",
			Supplier:     &domain.Supplier{ID: "s1", Name: "Recicladora Sur"},
			State:        domain.StateApproved,
			BasePrice:    150,
			TotalPrice:   157.5,
			Items: []domain.ReportItem{
				{ID: "i1", ProductID: "p1", Product: maize, Weight: 200, WeightUnit: "pounds", WeightInQuintals: 2, BasePrice: 100},
				{ID: "i2", ProductID: "p2", Product: glass, Weight: 1, WeightUnit: "quintals", WeightInQuintals: 1, BasePrice: 50},
			},
		},
		{
			ID:           "r2",
			ReportDate:   date,
			TicketNumber: "TK-000002",
			PlateNumber:  "P-222",
			DriverName:   "Luis",
			State:        domain.StateCancelled,
		},
	}
}

func TestDetailRowsOnePerItem(t *testing.T) {
	rows := detailRows(sampleReports())
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (two items + one itemless report)", len(rows))
	}
	if rows[0][1] != "TK-000001" || rows[0][3] != "Carton" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if rows[2][1] != "TK-000002" || rows[2][3] != "-" {
		t.Fatalf("itemless report row = %v", rows[2])
	}
	if rows[2][12] != "CANCELLED" {
		t.Fatalf("state cell = %v", rows[2][12])
	}
}

func TestSummaryRowsGroupByProduct(t *testing.T) {
	rows := summaryRows(sampleReports())
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 2 products + TOTAL", len(rows))
	}
	if rows[0][0] != "Carton" || rows[1][0] != "Vidrio" {
		t.Fatalf("rows = %v", rows)
	}
	last := rows[len(rows)-1]
	if last[0] != "TOTAL" {
		t.Fatalf("last row = %v", last)
	}
	if last[1].(float64) != 3 || last[2].(float64) != 150 {
		t.Fatalf("totals = %v", last)
	}
}

func TestDetailCSV(t *testing.T) {
	data, err := DetailCSV(sampleReports())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("missing UTF-8 BOM")
	}
	text := string(data[3:])
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header + 3 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Fecha,No. Ticket") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "TK-000001") || !strings.Contains(lines[1], "Libras") {
		t.Fatalf("row = %q", lines[1])
	}
}

func TestWorkbookRenders(t *testing.T) {
	data, err := Workbook(sampleReports())
	if err != nil {
		t.Fatal(err)
	}
	// XLSX is a zip container
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatal("output is not a zip archive")
	}
}

func TestTicketRenders(t *testing.T) {
	data, err := Ticket(sampleReports()[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}
