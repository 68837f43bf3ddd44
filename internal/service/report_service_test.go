package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/recopesa/intake-backend/internal/cache"
	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/report"
	"github.com/recopesa/intake-backend/internal/repository"
)

func nearlyEqual(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// memReportRepo keeps reports in a map and hands out sequential tickets,
// mirroring what the Postgres repository does with its sequence.
type memReportRepo struct {
	reports map[string]*domain.Report
	seq     int
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{reports: map[string]*domain.Report{}}
}

func (m *memReportRepo) Create(ctx context.Context, r *domain.Report) error {
	m.seq++
	r.TicketNumber = fmt.Sprintf("TK-%06d", m.seq)
	clone := *r
	m.reports[r.ID] = &clone
	return nil
}

func (m *memReportRepo) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *r
	clone.Items = append([]domain.ReportItem(nil), r.Items...)
	return &clone, nil
}

func (m *memReportRepo) List(ctx context.Context, filter *domain.ReportFilter, page, pageSize int) (*domain.ReportPage, error) {
	all, _ := m.ListAll(ctx, filter)
	return &domain.ReportPage{Data: all, Total: len(all), Page: page, PageSize: pageSize, TotalPages: 1}, nil
}

func (m *memReportRepo) ListAll(ctx context.Context, filter *domain.ReportFilter) ([]*domain.Report, error) {
	var out []*domain.Report
	for id := range m.reports {
		r, _ := m.GetByID(ctx, id)
		out = append(out, r)
	}
	return out, nil
}

func (m *memReportRepo) UpdateClose(ctx context.Context, r *domain.Report) error {
	stored, ok := m.reports[r.ID]
	if !ok || stored.State != domain.StatePending {
		return repository.ErrNotFound
	}
	clone := *r
	clone.Items = append([]domain.ReportItem(nil), stored.Items...)
	m.reports[r.ID] = &clone
	return nil
}

func (m *memReportRepo) InsertItem(ctx context.Context, item *domain.ReportItem) error {
	r, ok := m.reports[item.ReportID]
	if !ok {
		return repository.ErrNotFound
	}
	r.Items = append(r.Items, *item)
	return nil
}

func (m *memReportRepo) DeleteItem(ctx context.Context, reportID, itemID string) error {
	r, ok := m.reports[reportID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, item := range r.Items {
		if item.ID == itemID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memReportRepo) Summary(ctx context.Context, filter *domain.ReportFilter) (*domain.IntakeSummary, error) {
	summary := &domain.IntakeSummary{}
	for _, r := range m.reports {
		if r.State != domain.StateApproved {
			continue
		}
		summary.ReportCount++
		summary.TotalAmount += r.TotalPrice
		for _, item := range r.Items {
			summary.TotalQuintals += item.WeightInQuintals
		}
	}
	return summary, nil
}

type memProductRepo struct {
	products map[string]*domain.Product
}

func (m *memProductRepo) Create(ctx context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *memProductRepo) List(ctx context.Context, search string) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProductRepo) Update(ctx context.Context, p *domain.Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, id string) error {
	delete(m.products, id)
	return nil
}

type memConfigRepo struct {
	cfg domain.SystemConfig
}

func (m *memConfigRepo) Get(ctx context.Context) (*domain.SystemConfig, error) {
	cfg := m.cfg
	return &cfg, nil
}

func (m *memConfigRepo) Update(ctx context.Context, extraPercentage float64) (*domain.SystemConfig, error) {
	m.cfg.ExtraPercentage = extraPercentage
	m.cfg.UpdatedAt = time.Now()
	cfg := m.cfg
	return &cfg, nil
}

func newTestService(surcharge float64) (*ReportService, *memReportRepo, *memProductRepo) {
	reports := newMemReportRepo()
	products := &memProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Carton", PricePerQuintal: 50},
		"p2": {ID: "p2", Name: "Vidrio", PricePerQuintal: 30},
	}}
	summaryCache, configCache := cache.NewNoop()
	configSvc := NewConfigService(&memConfigRepo{cfg: domain.SystemConfig{ID: "default", ExtraPercentage: surcharge}}, configCache)
	svc := NewReportService(reports, products, configSvc, summaryCache)
	return svc, reports, products
}

func createInput() domain.CreateReportInput {
	return domain.CreateReportInput{
		SupplierID:  "sup-1",
		PlateNumber: "P-123",
		GrossWeight: 50,
		DriverName:  "Ana",
		UserID:      "user-1",
	}
}

func TestCreateReportRequiresUser(t *testing.T) {
	svc, _, _ := newTestService(5)
	in := createInput()
	in.UserID = ""
	_, err := svc.CreateReport(context.Background(), in)
	if !report.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateReportStartsPending(t *testing.T) {
	svc, _, _ := newTestService(5)
	created, err := svc.CreateReport(context.Background(), createInput())
	if err != nil {
		t.Fatal(err)
	}
	if created.State != domain.StatePending {
		t.Fatalf("state = %s", created.State)
	}
	if created.ID == "" || created.TicketNumber == "" {
		t.Fatalf("missing id or ticket: %+v", created)
	}
}

func TestAddItemSnapshotsPriceAndWeight(t *testing.T) {
	svc, _, _ := newTestService(5)
	ctx := context.Background()
	created, err := svc.CreateReport(ctx, createInput())
	if err != nil {
		t.Fatal(err)
	}

	// 200 lb of product p1 at 50/qq
	updated, err := svc.AddItem(ctx, created.ID, domain.CreateReportItemInput{
		ProductID:  "p1",
		Weight:     200,
		WeightUnit: "pounds",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("items = %d", len(updated.Items))
	}
	item := updated.Items[0]
	nearlyEqual(t, item.WeightInQuintals, 2)
	nearlyEqual(t, item.PricePerQuintal, 50)
	nearlyEqual(t, item.BasePrice, 100)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService(5)
	ctx := context.Background()
	created, err := svc.CreateReport(ctx, createInput())
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.AddItem(ctx, created.ID, domain.CreateReportItemInput{
		ProductID:  "missing",
		Weight:     10,
		WeightUnit: "quintals",
	})
	if !report.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddItemKeepsSnapshotWhenPriceChanges(t *testing.T) {
	svc, _, products := newTestService(5)
	ctx := context.Background()
	created, err := svc.CreateReport(ctx, createInput())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AddItem(ctx, created.ID, domain.CreateReportItemInput{
		ProductID: "p1", Weight: 2, WeightUnit: "quintals",
	}); err != nil {
		t.Fatal(err)
	}

	products.products["p1"].PricePerQuintal = 999

	loaded, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	nearlyEqual(t, loaded.Items[0].PricePerQuintal, 50)
	nearlyEqual(t, loaded.Items[0].BasePrice, 100)
}

func TestFinishFreezesTotalsWithConfiguredSurcharge(t *testing.T) {
	svc, _, _ := newTestService(5)
	ctx := context.Background()
	created, err := svc.CreateReport(ctx, createInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem(ctx, created.ID, domain.CreateReportItemInput{
		ProductID: "p1", Weight: 2, WeightUnit: "quintals",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddItem(ctx, created.ID, domain.CreateReportItemInput{
		ProductID: "p2", Weight: 100, WeightUnit: "pounds",
	}); err != nil {
		t.Fatal(err)
	}

	finished, err := svc.Finish(ctx, created.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if finished.State != domain.StateApproved {
		t.Fatalf("state = %s", finished.State)
	}
	nearlyEqual(t, finished.NetWeight, 40)
	nearlyEqual(t, finished.ExtraPercentage, 5)
	nearlyEqual(t, finished.BasePrice, 130)
	nearlyEqual(t, finished.TotalPrice, 136.5)
}

func TestFinishTwiceConflicts(t *testing.T) {
	svc, _, _ := newTestService(0)
	ctx := context.Background()
	created, err := svc.CreateReport(ctx, createInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Finish(ctx, created.ID, 10); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Finish(ctx, created.ID, 15)
	if !errors.Is(err, report.ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestMutationsRejectedAfterClose(t *testing.T) {
	svc, _, _ := newTestService(0)
	ctx := context.Background()
	created, err := svc.CreateReport(ctx, createInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Cancel(ctx, created.ID); err != nil {
		t.Fatal(err)
	}

	_, err = svc.AddItem(ctx, created.ID, domain.CreateReportItemInput{
		ProductID: "p1", Weight: 1, WeightUnit: "quintals",
	})
	if !errors.Is(err, report.ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	_, err = svc.RemoveItem(ctx, created.ID, "whatever")
	if !errors.Is(err, report.ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	_, err = svc.Finish(ctx, created.ID, 10)
	if !errors.Is(err, report.ErrStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _, _ := newTestService(0)
	ctx := context.Background()
	created, err := svc.CreateReport(ctx, createInput())
	if err != nil {
		t.Fatal(err)
	}
	updated, err := svc.AddItem(ctx, created.ID, domain.CreateReportItemInput{
		ProductID: "p1", Weight: 1, WeightUnit: "quintals",
	})
	if err != nil {
		t.Fatal(err)
	}

	after, err := svc.RemoveItem(ctx, created.ID, updated.Items[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("items = %d", len(after.Items))
	}

	_, err = svc.RemoveItem(ctx, created.ID, "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetUnknownReport(t *testing.T) {
	svc, _, _ := newTestService(0)
	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
