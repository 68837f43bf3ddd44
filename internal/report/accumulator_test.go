package report

import (
	"testing"

	"github.com/recopesa/intake-backend/internal/domain"
)

func snapshot(reportID string, weights ...float64) *domain.Report {
	r := &domain.Report{ID: reportID}
	for _, w := range weights {
		r.Items = append(r.Items, domain.ReportItem{ReportID: reportID, WeightInQuintals: w})
	}
	return r
}

func TestAccumulatorStartsEmpty(t *testing.T) {
	acc := NewAccumulator("r1")
	if acc.Len() != 0 {
		t.Fatalf("len = %d", acc.Len())
	}
	nearlyEqual(t, acc.AccumulatedQuintals(), 0)
	nearlyEqual(t, acc.RemainingQuintals(50), 50)
}

func TestApplySnapshotReplacesItems(t *testing.T) {
	acc := NewAccumulator("r1")
	acc.ApplySnapshot(snapshot("r1", 10, 5))
	if acc.Len() != 2 {
		t.Fatalf("len = %d", acc.Len())
	}
	nearlyEqual(t, acc.AccumulatedQuintals(), 15)

	// the next snapshot is authoritative, not additive
	acc.ApplySnapshot(snapshot("r1", 10))
	if acc.Len() != 1 {
		t.Fatalf("len = %d", acc.Len())
	}
	nearlyEqual(t, acc.AccumulatedQuintals(), 10)
}

func TestApplySnapshotIgnoresOtherReports(t *testing.T) {
	acc := NewAccumulator("r1")
	acc.ApplySnapshot(snapshot("r1", 10))
	acc.ApplySnapshot(snapshot("r2", 99))
	acc.ApplySnapshot(nil)
	nearlyEqual(t, acc.AccumulatedQuintals(), 10)
}

func TestAccumulatedQuintalsAvoidsFloatDrift(t *testing.T) {
	acc := NewAccumulator("r1")
	acc.ApplySnapshot(snapshot("r1", 0.1, 0.2, 0.3))
	nearlyEqual(t, acc.AccumulatedQuintals(), 0.6)
}

func TestRemainingQuintalsMayGoNegative(t *testing.T) {
	acc := NewAccumulator("r1")
	acc.ApplySnapshot(snapshot("r1", 30, 25))
	nearlyEqual(t, acc.RemainingQuintals(50), -5)
	if !acc.OverCapacity(50) {
		t.Fatal("expected over capacity")
	}
	if acc.OverCapacity(55) {
		t.Fatal("55 qq holds exactly")
	}
}

func TestItemsReturnsCopy(t *testing.T) {
	acc := NewAccumulator("r1")
	acc.ApplySnapshot(snapshot("r1", 10))
	items := acc.Items()
	items[0].WeightInQuintals = 999
	nearlyEqual(t, acc.AccumulatedQuintals(), 10)
}
