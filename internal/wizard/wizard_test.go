package wizard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/report"
)

func nearlyEqual(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// fakeService is an in-memory stand-in for the report service. Calls block on
// the gate channel when one is set, so tests can hold a mutation in flight.
type fakeService struct {
	report *domain.Report
	calls  int
	gate   chan struct{}
	fail   error
}

func newFakeService() *fakeService {
	return &fakeService{}
}

func (f *fakeService) wait() {
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeService) CreateReport(ctx context.Context, in domain.CreateReportInput) (*domain.Report, error) {
	f.calls++
	f.wait()
	if f.fail != nil {
		return nil, f.fail
	}
	f.report = &domain.Report{
		ID:          "r1",
		GrossWeight: in.GrossWeight,
		State:       domain.StatePending,
		Items:       []domain.ReportItem{},
	}
	return f.report, nil
}

func (f *fakeService) AddItem(ctx context.Context, reportID string, in domain.CreateReportItemInput) (*domain.Report, error) {
	f.calls++
	f.wait()
	if f.fail != nil {
		return nil, f.fail
	}
	item := domain.ReportItem{
		ID:               fmt.Sprintf("i%d", len(f.report.Items)+1),
		ReportID:         reportID,
		ProductID:        in.ProductID,
		Weight:           in.Weight,
		WeightInQuintals: in.Weight,
	}
	f.report.Items = append(f.report.Items, item)
	return f.report, nil
}

func (f *fakeService) RemoveItem(ctx context.Context, reportID, itemID string) (*domain.Report, error) {
	f.calls++
	f.wait()
	if f.fail != nil {
		return nil, f.fail
	}
	kept := f.report.Items[:0]
	for _, item := range f.report.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	f.report.Items = kept
	return f.report, nil
}

func (f *fakeService) Finish(ctx context.Context, reportID string, tareWeight float64) (*domain.Report, error) {
	f.calls++
	f.wait()
	if f.fail != nil {
		return nil, f.fail
	}
	f.report.State = domain.StateApproved
	f.report.TareWeight = tareWeight
	return f.report, nil
}

func header() domain.CreateReportInput {
	return domain.CreateReportInput{
		SupplierID:  "sup-1",
		PlateNumber: "P-1",
		GrossWeight: 50,
		DriverName:  "Ana",
	}
}

func item(weight float64) domain.CreateReportItemInput {
	return domain.CreateReportItemInput{ProductID: "prod-1", Weight: weight, WeightUnit: "quintals"}
}

func TestFullFlow(t *testing.T) {
	svc := newFakeService()
	w := New(svc)
	ctx := context.Background()

	if w.Step() != StepCreate {
		t.Fatalf("step = %v", w.Step())
	}

	if err := w.CreateReport(ctx, header()); err != nil {
		t.Fatal(err)
	}
	if w.Step() != StepItems || w.ReportID() != "r1" {
		t.Fatalf("step = %v, id = %q", w.Step(), w.ReportID())
	}

	if err := w.AddItem(ctx, item(30)); err != nil {
		t.Fatal(err)
	}
	if err := w.AddItem(ctx, item(15)); err != nil {
		t.Fatal(err)
	}
	nearlyEqual(t, w.AccumulatedQuintals(), 45)
	nearlyEqual(t, w.RemainingQuintals(), 5)

	if err := w.GoToClose(); err != nil {
		t.Fatal(err)
	}
	nearlyEqual(t, w.NetDivergence(10), 5)

	if err := w.Finish(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if w.Step() != StepCreate || w.ReportID() != "" {
		t.Fatal("finish must reset the wizard")
	}
	if svc.report.State != domain.StateApproved {
		t.Fatalf("state = %s", svc.report.State)
	}
}

func TestValidationStopsBeforeAnyCall(t *testing.T) {
	svc := newFakeService()
	w := New(svc)
	ctx := context.Background()

	in := header()
	in.GrossWeight = 0
	if err := w.CreateReport(ctx, in); !report.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if svc.calls != 0 {
		t.Fatalf("service was called %d times", svc.calls)
	}

	if err := w.CreateReport(ctx, header()); err != nil {
		t.Fatal(err)
	}
	calls := svc.calls

	if err := w.AddItem(ctx, item(0)); !report.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if svc.calls != calls {
		t.Fatal("invalid item must not reach the service")
	}

	if err := w.GoToClose(); err != nil {
		t.Fatal(err)
	}
	if err := w.Finish(ctx, 80); !report.IsValidation(err) {
		t.Fatalf("expected validation error for tare above gross, got %v", err)
	}
	if svc.calls != calls {
		t.Fatal("invalid tare must not reach the service")
	}
}

func TestStepGating(t *testing.T) {
	svc := newFakeService()
	w := New(svc)
	ctx := context.Background()

	if err := w.AddItem(ctx, item(10)); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected wrong step, got %v", err)
	}
	if err := w.Finish(ctx, 10); !report.IsValidation(err) {
		// tare validation fires first against the zero gross weight
		t.Fatalf("got %v", err)
	}
	if err := w.GoToClose(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected wrong step, got %v", err)
	}

	if err := w.CreateReport(ctx, header()); err != nil {
		t.Fatal(err)
	}
	if err := w.CreateReport(ctx, header()); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected wrong step on second create, got %v", err)
	}

	if err := w.BackToItems(); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("expected wrong step, got %v", err)
	}
	if err := w.GoToClose(); err != nil {
		t.Fatal(err)
	}
	if err := w.AddItem(ctx, item(10)); !errors.Is(err, ErrWrongStep) {
		t.Fatalf("adds are not valid at close-out, got %v", err)
	}
	if err := w.BackToItems(); err != nil {
		t.Fatal(err)
	}
	if err := w.AddItem(ctx, item(10)); err != nil {
		t.Fatal(err)
	}
}

func TestFailedAddLeavesStateIntact(t *testing.T) {
	svc := newFakeService()
	w := New(svc)
	ctx := context.Background()

	if err := w.CreateReport(ctx, header()); err != nil {
		t.Fatal(err)
	}
	if err := w.AddItem(ctx, item(20)); err != nil {
		t.Fatal(err)
	}

	svc.fail = errors.New("boom")
	if err := w.AddItem(ctx, item(5)); err == nil {
		t.Fatal("expected error")
	}
	svc.fail = nil

	if w.Busy() {
		t.Fatal("failure must clear the busy flag")
	}
	nearlyEqual(t, w.AccumulatedQuintals(), 20)

	// the same entry can be retried as-is
	if err := w.AddItem(ctx, item(5)); err != nil {
		t.Fatal(err)
	}
	nearlyEqual(t, w.AccumulatedQuintals(), 25)
}

func TestRemoveItemResyncs(t *testing.T) {
	svc := newFakeService()
	w := New(svc)
	ctx := context.Background()

	if err := w.CreateReport(ctx, header()); err != nil {
		t.Fatal(err)
	}
	if err := w.AddItem(ctx, item(20)); err != nil {
		t.Fatal(err)
	}
	if err := w.AddItem(ctx, item(10)); err != nil {
		t.Fatal(err)
	}

	if err := w.RemoveItem(ctx, "i1"); err != nil {
		t.Fatal(err)
	}
	items := w.Items()
	if len(items) != 1 || items[0].ID != "i2" {
		t.Fatalf("items = %+v", items)
	}
	nearlyEqual(t, w.AccumulatedQuintals(), 10)
}

func TestOnlyOneMutationInFlight(t *testing.T) {
	svc := newFakeService()
	w := New(svc)
	ctx := context.Background()

	if err := w.CreateReport(ctx, header()); err != nil {
		t.Fatal(err)
	}

	svc.gate = make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- w.AddItem(ctx, item(10))
	}()

	waitBusy(t, w)
	if err := w.AddItem(ctx, item(5)); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected busy, got %v", err)
	}

	close(svc.gate)
	if err := <-firstDone; err != nil {
		t.Fatal(err)
	}
	nearlyEqual(t, w.AccumulatedQuintals(), 10)
}

func TestResponseAfterResetIsDiscarded(t *testing.T) {
	svc := newFakeService()
	w := New(svc)
	ctx := context.Background()

	if err := w.CreateReport(ctx, header()); err != nil {
		t.Fatal(err)
	}

	svc.gate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- w.AddItem(ctx, item(10))
	}()

	waitBusy(t, w)
	w.Reset()

	close(svc.gate)
	if err := <-done; !errors.Is(err, ErrAbandoned) {
		t.Fatalf("expected abandoned, got %v", err)
	}

	if w.Step() != StepCreate || len(w.Items()) != 0 {
		t.Fatal("stale response must not repopulate a reset wizard")
	}
}

func waitBusy(t *testing.T, w *Wizard) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !w.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("wizard never became busy")
		}
		time.Sleep(time.Millisecond)
	}
}
