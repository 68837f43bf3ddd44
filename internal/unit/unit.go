// Package unit converts weigh-bridge readings into quintals, the canonical
// pricing unit (1 qq = 100 lb).
package unit

import "github.com/shopspring/decimal"

// Unit is a weight unit accepted on the wire.
type Unit string

const (
	Quintals  Unit = "quintals"
	Pounds    Unit = "pounds"
	Kilograms Unit = "kilograms"
	Tons      Unit = "tons"
)

// Factors are quintals per unit. 1 ton = 2204.6 lb = 22.046 qq.
var factors = map[Unit]float64{
	Quintals:  1,
	Pounds:    0.01,
	Kilograms: 0.022046,
	Tons:      22.046,
}

var labels = map[Unit]string{
	Quintals:  "Quintales",
	Pounds:    "Libras",
	Kilograms: "Kilogramos",
	Tons:      "Toneladas",
}

// All lists the supported units in display order.
func All() []Unit {
	return []Unit{Quintals, Pounds, Kilograms, Tons}
}

// Valid reports whether u is a supported unit.
func Valid(u Unit) bool {
	_, ok := factors[u]
	return ok
}

// ToQuintals converts a weight in the given unit to quintals, rounded half-up
// to 4 decimals. An unknown unit converts with factor 1: readings keep
// flowing with the raw value instead of failing the intake.
func ToQuintals(weight float64, u Unit) float64 {
	factor, ok := factors[u]
	if !ok {
		factor = 1
	}
	q := decimal.NewFromFloat(weight).Mul(decimal.NewFromFloat(factor))
	f, _ := q.Round(4).Float64()
	return f
}

// Label returns the display name for a unit, or its raw value when unknown.
func Label(u Unit) string {
	if label, ok := labels[u]; ok {
		return label
	}
	return string(u)
}
