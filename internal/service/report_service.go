package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recopesa/intake-backend/internal/cache"
	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/pricing"
	"github.com/recopesa/intake-backend/internal/repository"
	"github.com/recopesa/intake-backend/internal/report"
	"github.com/recopesa/intake-backend/internal/unit"
)

// ReportService is the authoritative owner of the report lifecycle. All
// pricing and state decisions go through the pure internal/report and
// internal/pricing packages; this layer loads, persists and invalidates.
type ReportService struct {
	reports   repository.ReportRepository
	products  repository.ProductRepository
	config    *ConfigService
	summaries cache.SummaryCache
}

func NewReportService(
	reports repository.ReportRepository,
	products repository.ProductRepository,
	config *ConfigService,
	summaries cache.SummaryCache,
) *ReportService {
	return &ReportService{
		reports:   reports,
		products:  products,
		config:    config,
		summaries: summaries,
	}
}

// CreateReport validates the header and persists a new PENDING report with no
// items. The ticket number comes from the repository's sequence.
func (s *ReportService) CreateReport(ctx context.Context, in domain.CreateReportInput) (*domain.Report, error) {
	if in.UserID == "" {
		return nil, &report.ValidationError{Field: "userId", Reason: "must not be empty"}
	}

	created, err := report.New(in, in.UserID, "", time.Now())
	if err != nil {
		return nil, err
	}
	created.ID = uuid.NewString()

	if err := s.reports.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	log.Info().
		Str("report_id", created.ID).
		Str("ticket", created.TicketNumber).
		Str("supplier_id", created.SupplierID).
		Float64("gross_weight", created.GrossWeight).
		Msg("report created")

	return s.reload(ctx, created.ID)
}

// AddItem prices a line item against the product's current price and attaches
// it to a PENDING report. The weight-in-quintals and base price stored here
// are the snapshot of record; the client's own estimate is never trusted.
func (s *ReportService) AddItem(ctx context.Context, reportID string, in domain.CreateReportItemInput) (*domain.Report, error) {
	if err := report.ValidateItemInput(in); err != nil {
		return nil, err
	}

	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := report.CanMutateItems(current); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &report.ValidationError{Field: "productId", Reason: "unknown product"}
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	qq := unit.ToQuintals(in.Weight, unit.Unit(in.WeightUnit))
	item := &domain.ReportItem{
		ID:               uuid.NewString(),
		ReportID:         current.ID,
		ProductID:        product.ID,
		Weight:           in.Weight,
		WeightUnit:       in.WeightUnit,
		WeightInQuintals: qq,
		PricePerQuintal:  product.PricePerQuintal,
		BasePrice:        pricing.BasePrice(product.PricePerQuintal, qq),
		DiscountWeight:   in.DiscountWeight,
		CreatedAt:        time.Now(),
	}

	if err := s.reports.InsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add report item: %w", err)
	}

	s.invalidateSummaries(ctx)
	return s.reload(ctx, reportID)
}

// RemoveItem deletes a line item from a PENDING report and returns the
// updated report.
func (s *ReportService) RemoveItem(ctx context.Context, reportID, itemID string) (*domain.Report, error) {
	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := report.CanMutateItems(current); err != nil {
		return nil, err
	}

	if err := s.reports.DeleteItem(ctx, reportID, itemID); err != nil {
		return nil, err
	}

	s.invalidateSummaries(ctx)
	return s.reload(ctx, reportID)
}

// Finish closes a PENDING report: fixes the tare, computes the net weight and
// freezes the totals using the surcharge percentage configured at this
// moment.
func (s *ReportService) Finish(ctx context.Context, reportID string, tareWeight float64) (*domain.Report, error) {
	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load surcharge config: %w", err)
	}

	if err := report.Finish(current, tareWeight, cfg.ExtraPercentage, time.Now()); err != nil {
		return nil, err
	}

	if err := s.reports.UpdateClose(ctx, current); err != nil {
		return nil, fmt.Errorf("persist finished report: %w", err)
	}

	log.Info().
		Str("report_id", current.ID).
		Str("ticket", current.TicketNumber).
		Float64("net_weight", current.NetWeight).
		Float64("total_price", current.TotalPrice).
		Msg("report approved")

	s.invalidateSummaries(ctx)
	return current, nil
}

// Cancel moves a PENDING report to CANCELLED, keeping its items for audit.
func (s *ReportService) Cancel(ctx context.Context, reportID string) (*domain.Report, error) {
	current, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if err := report.Cancel(current, time.Now()); err != nil {
		return nil, err
	}

	if err := s.reports.UpdateClose(ctx, current); err != nil {
		return nil, fmt.Errorf("persist cancelled report: %w", err)
	}

	log.Info().
		Str("report_id", current.ID).
		Str("ticket", current.TicketNumber).
		Msg("report cancelled")

	s.invalidateSummaries(ctx)
	return current, nil
}

// Get loads one report with items and relations.
func (s *ReportService) Get(ctx context.Context, reportID string) (*domain.Report, error) {
	return s.reports.GetByID(ctx, reportID)
}

// List returns a page of reports matching the filter.
func (s *ReportService) List(ctx context.Context, filter *domain.ReportFilter, page, pageSize int) (*domain.ReportPage, error) {
	return s.reports.List(ctx, filter, page, pageSize)
}

// ListAll returns every matching report, for exports.
func (s *ReportService) ListAll(ctx context.Context, filter *domain.ReportFilter) ([]*domain.Report, error) {
	return s.reports.ListAll(ctx, filter)
}

// Summary returns the per-product dashboard roll-up, served from cache when
// fresh.
func (s *ReportService) Summary(ctx context.Context, filter *domain.ReportFilter) (*domain.IntakeSummary, error) {
	if cached, ok, err := s.summaries.Get(ctx, filter); err != nil {
		log.Warn().Err(err).Msg("summary cache read failed")
	} else if ok {
		return cached, nil
	}

	summary, err := s.reports.Summary(ctx, filter)
	if err != nil {
		return nil, err
	}

	if err := s.summaries.Set(ctx, filter, summary); err != nil {
		log.Warn().Err(err).Msg("summary cache write failed")
	}
	return summary, nil
}

func (s *ReportService) reload(ctx context.Context, reportID string) (*domain.Report, error) {
	updated, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, fmt.Errorf("reload report: %w", err)
	}
	return updated, nil
}

func (s *ReportService) invalidateSummaries(ctx context.Context) {
	if err := s.summaries.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("summary cache invalidation failed")
	}
}
