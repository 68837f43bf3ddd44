// Package pricing computes line-item and report prices from quintal weights
// and the configured surcharge percentage.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/recopesa/intake-backend/internal/unit"
)

// Quote is the priced breakdown for a weight at a given price per quintal.
type Quote struct {
	WeightInQuintals float64 `json:"weightInQuintals"`
	BasePrice        float64 `json:"basePrice"`
	Surcharge        float64 `json:"surcharge"`
	Total            float64 `json:"total"`
}

// Price converts the weight to quintals and prices it. Money values are
// rounded half-up to 2 decimals, the quintal weight to 4.
func Price(pricePerQuintal, weight float64, u unit.Unit, surchargePercent float64) Quote {
	qq := unit.ToQuintals(weight, u)

	base := decimal.NewFromFloat(pricePerQuintal).
		Mul(decimal.NewFromFloat(qq)).
		Round(2)
	surcharge := base.
		Mul(decimal.NewFromFloat(surchargePercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	total := base.Add(surcharge).Round(2)

	baseF, _ := base.Float64()
	surchargeF, _ := surcharge.Float64()
	totalF, _ := total.Float64()

	return Quote{
		WeightInQuintals: qq,
		BasePrice:        baseF,
		Surcharge:        surchargeF,
		Total:            totalF,
	}
}

// BasePrice prices a quintal weight without surcharge, rounded to 2 decimals.
// This is the value snapshotted onto a report item.
func BasePrice(pricePerQuintal, weightInQuintals float64) float64 {
	base := decimal.NewFromFloat(pricePerQuintal).
		Mul(decimal.NewFromFloat(weightInQuintals)).
		Round(2)
	f, _ := base.Float64()
	return f
}

// ApplySurcharge computes base + base*percent/100, both rounded to 2
// decimals. Used for the report-level total at finish time.
func ApplySurcharge(base, percent float64) (surcharge, total float64) {
	b := decimal.NewFromFloat(base)
	s := b.Mul(decimal.NewFromFloat(percent)).Div(decimal.NewFromInt(100)).Round(2)
	t := b.Add(s).Round(2)
	surcharge, _ = s.Float64()
	total, _ = t.Float64()
	return surcharge, total
}

// Round2 rounds a money value half-up to 2 decimals.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
