package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/unit"
)

// Ticket renders the printable weigh ticket for one report: an original and a
// copy on a single page, mirroring the layout the scale operators hand to
// drivers.
func Ticket(r *domain.Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	writeTicketCopy(pdf, r, "ORIGINAL", 10)
	pdf.SetDashPattern([]float64{2, 2}, 0)
	pdf.Line(10, 148, 200, 148)
	pdf.SetDashPattern([]float64{}, 0)
	writeTicketCopy(pdf, r, "COPIA", 155)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTicketCopy(pdf *fpdf.Fpdf, r *domain.Report, copyLabel string, top float64) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetXY(10, top)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(130, 7, "Ticket de Ingreso", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(60, 7, copyLabel, "", 1, "R", false, 0, "")

	pdf.SetX(10)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(190, 6, r.TicketNumber, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	line := func(label, value string) {
		pdf.SetX(10)
		pdf.CellFormat(45, 5.5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(145, 5.5, tr(value), "", 1, "L", false, 0, "")
	}

	supplier := "-"
	if r.Supplier != nil {
		supplier = r.Supplier.Name
	}

	line("Fecha:", r.ReportDate.Format("2006-01-02"))
	line("Proveedor:", supplier)
	line("Placa:", r.PlateNumber)
	line("Piloto:", r.DriverName)
	line("Peso Bruto:", fmt.Sprintf("%.2f qq", r.GrossWeight))
	line("Peso Tara:", fmt.Sprintf("%.2f qq", r.TareWeight))
	line("Peso Neto:", fmt.Sprintf("%.2f qq", r.NetWeight))

	pdf.Ln(2)
	pdf.SetX(10)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(190, 5.5, "Productos", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range r.Items {
		product := "-"
		if item.Product != nil {
			product = item.Product.Name
		}
		pdf.SetX(10)
		pdf.CellFormat(70, 5, tr(product), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, tr(fmt.Sprintf("%.2f %s", item.Weight, unit.Label(unit.Unit(item.WeightUnit)))), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, fmt.Sprintf("%.4f qq / Q%.2f", item.WeightInQuintals, item.BasePrice), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 10)
	line("Precio Base:", fmt.Sprintf("Q%.2f", r.BasePrice))
	line(fmt.Sprintf("Adicional (%.2f%%):", r.ExtraPercentage), fmt.Sprintf("Q%.2f", r.TotalPrice-r.BasePrice))
	pdf.SetFont("Helvetica", "B", 11)
	line("Precio Total:", fmt.Sprintf("Q%.2f", r.TotalPrice))
}
