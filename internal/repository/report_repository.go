package repository

import (
	"context"
	"errors"

	"github.com/recopesa/intake-backend/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type ReportRepository interface {
	// Create persists a new report and assigns its ticket number from the
	// ticket sequence.
	Create(ctx context.Context, r *domain.Report) error
	// GetByID loads a report with its items, supplier and user.
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	// List returns a page of reports matching the filter, newest first.
	List(ctx context.Context, filter *domain.ReportFilter, page, pageSize int) (*domain.ReportPage, error)
	// ListAll returns every report matching the filter, for exports.
	ListAll(ctx context.Context, filter *domain.ReportFilter) ([]*domain.Report, error)
	// UpdateClose persists the finish/cancel outcome: state, tare, net
	// weight and frozen prices.
	UpdateClose(ctx context.Context, r *domain.Report) error
	// InsertItem adds a line item to a pending report.
	InsertItem(ctx context.Context, item *domain.ReportItem) error
	// DeleteItem removes a line item; ErrNotFound when it does not belong
	// to the report.
	DeleteItem(ctx context.Context, reportID, itemID string) error
	// Summary aggregates approved-report totals per product over the
	// filter window.
	Summary(ctx context.Context, filter *domain.ReportFilter) (*domain.IntakeSummary, error)
}
