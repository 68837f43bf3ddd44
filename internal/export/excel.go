// Package export renders filtered report listings into the formats the
// back office distributes: XLSX and CSV spreadsheets with one row per line
// item plus a per-product summary, and a printable PDF weigh ticket.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/unit"
)

var detailHeaders = []string{
	"Fecha", "No. Ticket", "Proveedor", "Producto", "Placa", "Piloto",
	"Peso", "Unidad", "Peso (Quintales)", "Precio Base", "% Adicional",
	"Precio Total", "Estado",
}

var summaryHeaders = []string{"Producto", "Peso Total (Quintales)", "Monto Total"}

// Workbook renders the detailed and summary sheets for the given reports and
// returns the XLSX bytes.
func Workbook(reports []*domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const detailSheet = "Detalle"
	f.SetSheetName(f.GetSheetName(0), detailSheet)

	if err := writeRow(f, detailSheet, 1, toCells(detailHeaders)); err != nil {
		return nil, err
	}

	row := 2
	for _, r := range detailRows(reports) {
		if err := writeRow(f, detailSheet, row, r); err != nil {
			return nil, err
		}
		row++
	}

	const summarySheet = "Resumen"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	if err := writeRow(f, summarySheet, 1, toCells(summaryHeaders)); err != nil {
		return nil, err
	}
	row = 2
	for _, r := range summaryRows(reports) {
		if err := writeRow(f, summarySheet, row, r); err != nil {
			return nil, err
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write sheet row: %w", err)
	}
	return nil
}

func toCells(headers []string) []interface{} {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return cells
}

// detailRows emits one row per report item; reports without items still get a
// single row so cancelled or empty tickets remain visible in the export.
func detailRows(reports []*domain.Report) [][]interface{} {
	var rows [][]interface{}
	for _, r := range reports {
		supplier := "-"
		if r.Supplier != nil {
			supplier = r.Supplier.Name
		}

		if len(r.Items) == 0 {
			rows = append(rows, []interface{}{
				r.ReportDate.Format("2006-01-02"), r.TicketNumber, supplier, "-",
				r.PlateNumber, r.DriverName, 0.0, "-", 0.0, r.BasePrice,
				r.ExtraPercentage, r.TotalPrice, string(r.State),
			})
			continue
		}

		for _, item := range r.Items {
			product := "-"
			if item.Product != nil {
				product = item.Product.Name
			}
			rows = append(rows, []interface{}{
				r.ReportDate.Format("2006-01-02"), r.TicketNumber, supplier, product,
				r.PlateNumber, r.DriverName, item.Weight, unit.Label(unit.Unit(item.WeightUnit)),
				item.WeightInQuintals, item.BasePrice, r.ExtraPercentage,
				r.TotalPrice, string(r.State),
			})
		}
	}
	return rows
}

func summaryRows(reports []*domain.Report) [][]interface{} {
	type total struct {
		name     string
		quintals float64
		amount   float64
	}
	totals := map[string]*total{}
	var order []string

	for _, r := range reports {
		for _, item := range r.Items {
			name := item.ProductID
			if item.Product != nil {
				name = item.Product.Name
			}
			t, ok := totals[name]
			if !ok {
				t = &total{name: name}
				totals[name] = t
				order = append(order, name)
			}
			t.quintals += item.WeightInQuintals
			t.amount += item.BasePrice
		}
	}

	rows := make([][]interface{}, 0, len(order)+1)
	var grandQuintals, grandAmount float64
	for _, name := range order {
		t := totals[name]
		rows = append(rows, []interface{}{t.name, t.quintals, t.amount})
		grandQuintals += t.quintals
		grandAmount += t.amount
	}
	rows = append(rows, []interface{}{"TOTAL", grandQuintals, grandAmount})
	return rows
}
