package unit

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestToQuintalsIdentity(t *testing.T) {
	nearlyEqual(t, ToQuintals(12.5, Quintals), 12.5)
}

func TestToQuintalsPounds(t *testing.T) {
	// 100 lb is exactly one quintal
	nearlyEqual(t, ToQuintals(100, Pounds), 1)
	nearlyEqual(t, ToQuintals(250, Pounds), 2.5)
}

func TestToQuintalsKilograms(t *testing.T) {
	nearlyEqual(t, ToQuintals(1000, Kilograms), 22.046)
}

func TestToQuintalsTons(t *testing.T) {
	nearlyEqual(t, ToQuintals(1, Tons), 22.046)
	nearlyEqual(t, ToQuintals(2.5, Tons), 55.115)
}

func TestToQuintalsRoundsToFourDecimals(t *testing.T) {
	// 1.23456 qq worth of pounds rounds half-up at the 4th decimal
	nearlyEqual(t, ToQuintals(123.456, Pounds), 1.2346)
}

func TestToQuintalsUnknownUnitPassesThrough(t *testing.T) {
	nearlyEqual(t, ToQuintals(7.25, Unit("bushels")), 7.25)
}

func TestValid(t *testing.T) {
	for _, u := range All() {
		if !Valid(u) {
			t.Fatalf("expected %q to be valid", u)
		}
	}
	if Valid(Unit("stone")) {
		t.Fatal("expected unknown unit to be invalid")
	}
}

func TestLabel(t *testing.T) {
	if got := Label(Quintals); got != "Quintales" {
		t.Fatalf("got %q", got)
	}
	if got := Label(Unit("stone")); got != "stone" {
		t.Fatalf("got %q", got)
	}
}
