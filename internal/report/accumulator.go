package report

import (
	"github.com/shopspring/decimal"

	"github.com/recopesa/intake-backend/internal/domain"
)

// Accumulator holds the client-visible items of a PENDING report and derives
// the advisory accumulated/remaining weights shown against the declared gross
// weight. It never computes authoritative values itself: state only changes
// through ApplySnapshot with the server's response, so a failed add or remove
// leaves it untouched.
type Accumulator struct {
	reportID string
	items    []domain.ReportItem
}

// NewAccumulator returns an empty accumulator for the given report.
func NewAccumulator(reportID string) *Accumulator {
	return &Accumulator{reportID: reportID}
}

// ApplySnapshot replaces the local item set with the authoritative report
// returned by the server. A snapshot for a different report is ignored.
func (a *Accumulator) ApplySnapshot(r *domain.Report) {
	if r == nil || (a.reportID != "" && r.ID != a.reportID) {
		return
	}
	a.items = make([]domain.ReportItem, len(r.Items))
	copy(a.items, r.Items)
}

// Items returns a copy of the current item set.
func (a *Accumulator) Items() []domain.ReportItem {
	out := make([]domain.ReportItem, len(a.items))
	copy(out, a.items)
	return out
}

// Len returns the number of items.
func (a *Accumulator) Len() int {
	return len(a.items)
}

// AccumulatedQuintals sums the server-computed quintal weights of all items,
// rounded to 4 decimals.
func (a *Accumulator) AccumulatedQuintals() float64 {
	sum := decimal.Zero
	for _, item := range a.items {
		sum = sum.Add(decimal.NewFromFloat(item.WeightInQuintals))
	}
	f, _ := sum.Round(4).Float64()
	return f
}

// RemainingQuintals is the advisory capacity left against the gross weight.
// It may go negative; exceeding the gross weight warns but never blocks an
// add, only the finish step gate-keeps.
func (a *Accumulator) RemainingQuintals(grossWeight float64) float64 {
	rem := decimal.NewFromFloat(grossWeight).
		Sub(decimal.NewFromFloat(a.AccumulatedQuintals()))
	f, _ := rem.Round(4).Float64()
	return f
}

// OverCapacity reports whether the accumulated item weight exceeds the gross
// weight (the UI surfaces this as a warning color).
func (a *Accumulator) OverCapacity(grossWeight float64) bool {
	return a.AccumulatedQuintals() > grossWeight
}
