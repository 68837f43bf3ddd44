// Package report holds the pure report lifecycle: the PENDING -> APPROVED /
// CANCELLED state machine and the running-total accumulator. It never touches
// storage or the network; the service layer persists what it decides.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/pricing"
)

// New builds a report in PENDING state from a validated header. The ticket
// number is assigned by the caller (it comes from a DB sequence) and the
// report date defaults to now when not supplied.
func New(in domain.CreateReportInput, userID, ticketNumber string, now time.Time) (*domain.Report, error) {
	if err := ValidateHeader(in); err != nil {
		return nil, err
	}

	reportDate := now
	if in.ReportDate != nil {
		reportDate = *in.ReportDate
	}

	return &domain.Report{
		ReportDate:   reportDate,
		TicketNumber: ticketNumber,
		PlateNumber:  strings.TrimSpace(in.PlateNumber),
		SupplierID:   in.SupplierID,
		UserID:       userID,
		GrossWeight:  in.GrossWeight,
		TareWeight:   0,
		DriverName:   strings.TrimSpace(in.DriverName),
		State:        domain.StatePending,
		Items:        []domain.ReportItem{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateHeader checks the step-1 header fields. It runs both in the wizard,
// before the create call goes out, and server-side in New.
func ValidateHeader(in domain.CreateReportInput) error {
	if strings.TrimSpace(in.SupplierID) == "" {
		return &ValidationError{Field: "supplierId", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.PlateNumber) == "" {
		return &ValidationError{Field: "plateNumber", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.DriverName) == "" {
		return &ValidationError{Field: "driverName", Reason: "must not be empty"}
	}
	if in.GrossWeight <= 0 {
		return &ValidationError{Field: "grossWeight", Reason: "must be greater than zero"}
	}
	return nil
}

// ValidateItemInput checks an item before it is priced or persisted.
func ValidateItemInput(in domain.CreateReportItemInput) error {
	if strings.TrimSpace(in.ProductID) == "" {
		return &ValidationError{Field: "productId", Reason: "must not be empty"}
	}
	if in.Weight <= 0 {
		return &ValidationError{Field: "weight", Reason: "must be greater than zero"}
	}
	if in.DiscountWeight < 0 {
		return &ValidationError{Field: "discountWeight", Reason: "must not be negative"}
	}
	return nil
}

// CanMutateItems gates item add/remove: only a PENDING report accepts them.
func CanMutateItems(r *domain.Report) error {
	if r.State != domain.StatePending {
		return fmt.Errorf("%w: cannot modify items of a %s report", ErrStateConflict, r.State)
	}
	return nil
}

// ValidateTare checks the close-out tare against the declared gross weight.
// This runs client-side in the wizard as well, before any network call.
func ValidateTare(tareWeight, grossWeight float64) error {
	if tareWeight <= 0 {
		return &ValidationError{Field: "tareWeight", Reason: "must be greater than zero"}
	}
	if tareWeight >= grossWeight {
		return &ValidationError{Field: "tareWeight", Reason: "must be less than the gross weight"}
	}
	return nil
}

// Finish moves a PENDING report to APPROVED: it fixes the tare, computes the
// net weight and prices the report with the surcharge snapshot passed in.
// The surcharge is an argument, not an ambient read, so the transition stays
// deterministic.
func Finish(r *domain.Report, tareWeight, surchargePercent float64, now time.Time) error {
	if r.State != domain.StatePending {
		return fmt.Errorf("%w: cannot finish a %s report", ErrStateConflict, r.State)
	}
	if err := ValidateTare(tareWeight, r.GrossWeight); err != nil {
		return err
	}

	base := ItemsBasePrice(r.Items)
	_, total := pricing.ApplySurcharge(base, surchargePercent)

	r.TareWeight = tareWeight
	r.NetWeight = r.GrossWeight - tareWeight
	r.ExtraPercentage = surchargePercent
	r.BasePrice = base
	r.TotalPrice = total
	r.State = domain.StateApproved
	r.UpdatedAt = now
	return nil
}

// Cancel moves a PENDING report to CANCELLED. Items are kept for audit but
// the report is frozen; there is no un-cancel.
func Cancel(r *domain.Report, now time.Time) error {
	if r.State != domain.StatePending {
		return fmt.Errorf("%w: cannot cancel a %s report", ErrStateConflict, r.State)
	}
	r.State = domain.StateCancelled
	r.UpdatedAt = now
	return nil
}

// ItemsBasePrice sums the snapshotted base prices of the given items, rounded
// to 2 decimals.
func ItemsBasePrice(items []domain.ReportItem) float64 {
	var sum float64
	for _, item := range items {
		sum += item.BasePrice
	}
	return pricing.Round2(sum)
}
