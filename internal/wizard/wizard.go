// Package wizard drives the three-step intake flow (header, items, close-out)
// on top of the authoritative report service. It mirrors the dialog the staff
// works in: one in-flight mutation at a time, inputs validated before any
// call goes out, and server responses applied wholesale through the
// accumulator's snapshot reducer.
package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/report"
)

// Step is the wizard position.
type Step int

const (
	StepCreate Step = iota
	StepItems
	StepFinish
)

var (
	// ErrBusy is returned while a previous mutation is still in flight.
	ErrBusy = errors.New("wizard: operation already in flight")
	// ErrWrongStep is returned when an operation does not belong to the
	// current step.
	ErrWrongStep = errors.New("wizard: operation not valid in current step")
	// ErrAbandoned marks a response that arrived after the wizard was
	// reset; its result has been discarded.
	ErrAbandoned = errors.New("wizard: session was reset")
)

// Service is the slice of the report service the wizard drives. Every call
// returns the full updated report; the wizard never trusts its own estimates
// for persisted totals.
type Service interface {
	CreateReport(ctx context.Context, in domain.CreateReportInput) (*domain.Report, error)
	AddItem(ctx context.Context, reportID string, in domain.CreateReportItemInput) (*domain.Report, error)
	RemoveItem(ctx context.Context, reportID, itemID string) (*domain.Report, error)
	Finish(ctx context.Context, reportID string, tareWeight float64) (*domain.Report, error)
}

// Wizard holds the transient client-side state of one intake dialog. Closing
// the dialog resets the wizard but deliberately leaves any already-created
// PENDING report on the server; staff cancel orphans from the report list.
type Wizard struct {
	svc Service

	mu          sync.Mutex
	gen         uint64
	step        Step
	busy        bool
	reportID    string
	grossWeight float64
	acc         *report.Accumulator
}

func New(svc Service) *Wizard {
	return &Wizard{svc: svc, acc: report.NewAccumulator("")}
}

// Step returns the current wizard step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Busy reports whether a mutation is in flight (the dialog disables inputs).
func (w *Wizard) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.busy
}

// ReportID returns the id of the report created in step 1, if any.
func (w *Wizard) ReportID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reportID
}

// Items returns the current server-confirmed items.
func (w *Wizard) Items() []domain.ReportItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acc.Items()
}

// AccumulatedQuintals is the advisory running total across confirmed items.
func (w *Wizard) AccumulatedQuintals() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acc.AccumulatedQuintals()
}

// RemainingQuintals is the advisory capacity left against the gross weight.
func (w *Wizard) RemainingQuintals() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.acc.RemainingQuintals(w.grossWeight)
}

// CreateReport runs step 1. On success the report exists server-side and the
// wizard advances to the items step; there is no way back past this point.
func (w *Wizard) CreateReport(ctx context.Context, in domain.CreateReportInput) error {
	if err := report.ValidateHeader(in); err != nil {
		return err
	}

	gen, _, err := w.begin(StepCreate)
	if err != nil {
		return err
	}

	created, svcErr := w.svc.CreateReport(ctx, in)

	return w.settle(gen, svcErr, func() {
		w.reportID = created.ID
		w.grossWeight = created.GrossWeight
		w.acc = report.NewAccumulator(created.ID)
		w.acc.ApplySnapshot(created)
		w.step = StepItems
	})
}

// AddItem runs one step-2 add. A rejected call leaves local state unchanged
// so the same entry can be retried as-is.
func (w *Wizard) AddItem(ctx context.Context, in domain.CreateReportItemInput) error {
	if err := report.ValidateItemInput(in); err != nil {
		return err
	}

	gen, reportID, err := w.begin(StepItems)
	if err != nil {
		return err
	}

	updated, svcErr := w.svc.AddItem(ctx, reportID, in)

	return w.settle(gen, svcErr, func() {
		w.acc.ApplySnapshot(updated)
	})
}

// RemoveItem deletes a confirmed item and re-syncs from the server response.
func (w *Wizard) RemoveItem(ctx context.Context, itemID string) error {
	gen, reportID, err := w.begin(StepItems)
	if err != nil {
		return err
	}

	updated, svcErr := w.svc.RemoveItem(ctx, reportID, itemID)

	return w.settle(gen, svcErr, func() {
		w.acc.ApplySnapshot(updated)
	})
}

// GoToClose advances from the items step to the close-out step.
func (w *Wizard) GoToClose() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy || w.step != StepItems {
		return ErrWrongStep
	}
	w.step = StepFinish
	return nil
}

// BackToItems returns from close-out to the items step.
func (w *Wizard) BackToItems() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy || w.step != StepFinish {
		return ErrWrongStep
	}
	w.step = StepItems
	return nil
}

// Finish runs step 3. The tare bounds are checked here, before any call goes
// out; the divergence between net weight and accumulated items is advisory
// and reported separately via NetDivergence.
func (w *Wizard) Finish(ctx context.Context, tareWeight float64) error {
	w.mu.Lock()
	gross := w.grossWeight
	w.mu.Unlock()

	if err := report.ValidateTare(tareWeight, gross); err != nil {
		return err
	}

	gen, reportID, err := w.begin(StepFinish)
	if err != nil {
		return err
	}

	_, svcErr := w.svc.Finish(ctx, reportID, tareWeight)

	return w.settle(gen, svcErr, func() {
		w.reset()
	})
}

// NetDivergence returns |(gross - tare) - accumulated| in quintals, the
// advisory figure the close-out screen colors when it drifts.
func (w *Wizard) NetDivergence(tareWeight float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := (w.grossWeight - tareWeight) - w.acc.AccumulatedQuintals()
	if d < 0 {
		d = -d
	}
	return d
}

// Reset abandons the dialog state. Any response still in flight is discarded
// when it lands. The server-side report, if one was created, stays PENDING.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
}

func (w *Wizard) reset() {
	w.gen++
	w.step = StepCreate
	w.busy = false
	w.reportID = ""
	w.grossWeight = 0
	w.acc = report.NewAccumulator("")
}

func (w *Wizard) begin(want Step) (uint64, string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return 0, "", ErrBusy
	}
	if w.step != want {
		return 0, "", ErrWrongStep
	}
	w.busy = true
	return w.gen, w.reportID, nil
}

// settle closes out an in-flight call. Responses that land after a reset are
// dropped regardless of outcome; failures clear the busy flag but leave the
// entered state intact.
func (w *Wizard) settle(gen uint64, svcErr error, apply func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen != gen {
		return ErrAbandoned
	}
	w.busy = false
	if svcErr != nil {
		return svcErr
	}
	apply()
	return nil
}
