package pricing

import (
	"math"
	"testing"

	"github.com/recopesa/intake-backend/internal/unit"
)

func nearlyEqual(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPrice(t *testing.T) {
	q := Price(50, 2, unit.Quintals, 5)
	nearlyEqual(t, q.WeightInQuintals, 2)
	nearlyEqual(t, q.BasePrice, 100)
	nearlyEqual(t, q.Surcharge, 5)
	nearlyEqual(t, q.Total, 105)
}

func TestPriceConvertsUnitFirst(t *testing.T) {
	// 500 lb = 5 qq at 40/qq
	q := Price(40, 500, unit.Pounds, 0)
	nearlyEqual(t, q.WeightInQuintals, 5)
	nearlyEqual(t, q.BasePrice, 200)
	nearlyEqual(t, q.Surcharge, 0)
	nearlyEqual(t, q.Total, 200)
}

func TestPriceTotalIsBasePlusSurcharge(t *testing.T) {
	q := Price(33.33, 1.7, unit.Quintals, 7.5)
	nearlyEqual(t, q.Total, Round2(q.BasePrice+q.Surcharge))
}

func TestPriceRoundsMoneyToTwoDecimals(t *testing.T) {
	// 0.333 qq * 10.00 = 3.33, surcharge 10% = 0.33
	q := Price(10, 0.333, unit.Quintals, 10)
	nearlyEqual(t, q.BasePrice, 3.33)
	nearlyEqual(t, q.Surcharge, 0.33)
	nearlyEqual(t, q.Total, 3.66)
}

func TestBasePrice(t *testing.T) {
	nearlyEqual(t, BasePrice(25.5, 4), 102)
	nearlyEqual(t, BasePrice(0, 10), 0)
	nearlyEqual(t, BasePrice(10.005, 1), 10.01)
}

func TestApplySurcharge(t *testing.T) {
	surcharge, total := ApplySurcharge(200, 5)
	nearlyEqual(t, surcharge, 10)
	nearlyEqual(t, total, 210)
}

func TestApplySurchargeZeroPercent(t *testing.T) {
	surcharge, total := ApplySurcharge(123.45, 0)
	nearlyEqual(t, surcharge, 0)
	nearlyEqual(t, total, 123.45)
}

func TestRound2HalfUp(t *testing.T) {
	nearlyEqual(t, Round2(1.005), 1.01)
	nearlyEqual(t, Round2(1.004), 1.0)
}
