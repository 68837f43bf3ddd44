package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/recopesa/intake-backend/internal/domain"
	"github.com/recopesa/intake-backend/internal/repository"
)

type reportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var seq int64
		if err := tx.QueryRowContext(ctx, `SELECT nextval('report_ticket_seq')`).Scan(&seq); err != nil {
			return fmt.Errorf("failed to allocate ticket number: %w", err)
		}
		report.TicketNumber = fmt.Sprintf("TK-%06d", seq)

		query := `
			INSERT INTO reports (
				id, report_date, ticket_number, plate_number, supplier_id, user_id,
				gross_weight, tare_weight, net_weight, extra_percentage,
				base_price, total_price, driver_name, state, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`
		_, err := tx.ExecContext(ctx, query,
			report.ID, report.ReportDate, report.TicketNumber, report.PlateNumber,
			report.SupplierID, report.UserID,
			report.GrossWeight, report.TareWeight, report.NetWeight, report.ExtraPercentage,
			report.BasePrice, report.TotalPrice, report.DriverName, report.State,
			report.CreatedAt, report.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
		return nil
	})
}

func (r *reportRepository) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	query := `
		SELECT id, report_date, ticket_number, plate_number, supplier_id, user_id,
		       gross_weight, tare_weight, net_weight, extra_percentage,
		       base_price, total_price, driver_name, state, created_at, updated_at
		FROM reports
		WHERE id = $1
	`

	var report domain.Report
	if err := sqlx.GetContext(ctx, r.db, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if err := r.attachRelations(ctx, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

func (r *reportRepository) attachRelations(ctx context.Context, report *domain.Report) error {
	items, err := r.loadItems(ctx, report.ID)
	if err != nil {
		return err
	}
	report.Items = items

	var supplier domain.Supplier
	err = sqlx.GetContext(ctx, r.db, &supplier,
		`SELECT id, name, address, phone, representative, created_at, updated_at FROM suppliers WHERE id = $1`,
		report.SupplierID)
	if err == nil {
		report.Supplier = &supplier
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to load supplier: %w", err)
	}

	var user domain.User
	err = sqlx.GetContext(ctx, r.db, &user,
		`SELECT id, first_name, last_name, email, created_at, updated_at FROM users WHERE id = $1`,
		report.UserID)
	if err == nil {
		report.User = &user
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to load user: %w", err)
	}

	return nil
}

type itemRow struct {
	domain.ReportItem
	ProductName  string    `db:"product_name"`
	ProductPrice float64   `db:"product_price"`
	ProductAt    time.Time `db:"product_updated_at"`
}

func (r *reportRepository) loadItems(ctx context.Context, reportID string) ([]domain.ReportItem, error) {
	query := `
		SELECT i.id, i.report_id, i.product_id, i.weight, i.weight_unit,
		       i.weight_in_quintals, i.price_per_quintal, i.base_price,
		       i.discount_weight, i.created_at,
		       p.name AS product_name, p.price_per_quintal AS product_price,
		       p.updated_at AS product_updated_at
		FROM report_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.report_id = $1
		ORDER BY i.created_at
	`

	var rows []itemRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, reportID); err != nil {
		return nil, fmt.Errorf("failed to load report items: %w", err)
	}

	items := make([]domain.ReportItem, 0, len(rows))
	for _, row := range rows {
		item := row.ReportItem
		item.Product = &domain.Product{
			ID:              row.ProductID,
			Name:            row.ProductName,
			PricePerQuintal: row.ProductPrice,
			UpdatedAt:       row.ProductAt,
		}
		items = append(items, item)
	}
	return items, nil
}

func buildReportFilter(filter *domain.ReportFilter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StartDate != nil {
		conds = append(conds, "r.report_date >= "+arg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conds = append(conds, "r.report_date <= "+arg(*filter.EndDate))
	}
	if filter.SupplierID != "" {
		conds = append(conds, "r.supplier_id = "+arg(filter.SupplierID))
	}
	if filter.State != "" {
		conds = append(conds, "r.state = "+arg(strings.ToUpper(filter.State)))
	}
	if filter.ProductID != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM report_items ri WHERE ri.report_id = r.id AND ri.product_id = "+arg(filter.ProductID)+")")
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		p := arg(pattern)
		conds = append(conds, "(r.ticket_number ILIKE "+p+" OR r.plate_number ILIKE "+p+")")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *reportRepository) List(ctx context.Context, filter *domain.ReportFilter, page, pageSize int) (*domain.ReportPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	where, args := buildReportFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM reports r` + where
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	query := `
		SELECT r.id, r.report_date, r.ticket_number, r.plate_number, r.supplier_id, r.user_id,
		       r.gross_weight, r.tare_weight, r.net_weight, r.extra_percentage,
		       r.base_price, r.total_price, r.driver_name, r.state, r.created_at, r.updated_at
		FROM reports r` + where + fmt.Sprintf(`
		ORDER BY r.report_date DESC, r.ticket_number DESC
		LIMIT %d OFFSET %d`, pageSize, (page-1)*pageSize)

	var reports []*domain.Report
	if err := sqlx.SelectContext(ctx, r.db, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	for _, report := range reports {
		if err := r.attachRelations(ctx, report); err != nil {
			return nil, err
		}
	}

	totalPages := (total + pageSize - 1) / pageSize
	return &domain.ReportPage{
		Data:       reports,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func (r *reportRepository) ListAll(ctx context.Context, filter *domain.ReportFilter) ([]*domain.Report, error) {
	where, args := buildReportFilter(filter)

	query := `
		SELECT r.id, r.report_date, r.ticket_number, r.plate_number, r.supplier_id, r.user_id,
		       r.gross_weight, r.tare_weight, r.net_weight, r.extra_percentage,
		       r.base_price, r.total_price, r.driver_name, r.state, r.created_at, r.updated_at
		FROM reports r` + where + `
		ORDER BY r.report_date DESC, r.ticket_number DESC
	`

	var reports []*domain.Report
	if err := sqlx.SelectContext(ctx, r.db, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reports for export: %w", err)
	}

	for _, report := range reports {
		if err := r.attachRelations(ctx, report); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

func (r *reportRepository) UpdateClose(ctx context.Context, report *domain.Report) error {
	query := `
		UPDATE reports
		SET state = $1, tare_weight = $2, net_weight = $3, extra_percentage = $4,
		    base_price = $5, total_price = $6, updated_at = $7
		WHERE id = $8 AND state = 'PENDING'
	`

	res, err := r.db.ExecContext(ctx, query,
		report.State, report.TareWeight, report.NetWeight, report.ExtraPercentage,
		report.BasePrice, report.TotalPrice, report.UpdatedAt, report.ID)
	if err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if affected == 0 {
		// Either the report vanished or another session already closed it.
		return repository.ErrNotFound
	}
	return nil
}

func (r *reportRepository) InsertItem(ctx context.Context, item *domain.ReportItem) error {
	query := `
		INSERT INTO report_items (
			id, report_id, product_id, weight, weight_unit, weight_in_quintals,
			price_per_quintal, base_price, discount_weight, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.ReportID, item.ProductID, item.Weight, item.WeightUnit,
		item.WeightInQuintals, item.PricePerQuintal, item.BasePrice,
		item.DiscountWeight, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report item: %w", err)
	}
	return nil
}

func (r *reportRepository) DeleteItem(ctx context.Context, reportID, itemID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM report_items WHERE id = $1 AND report_id = $2`, itemID, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete report item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete report item: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *reportRepository) Summary(ctx context.Context, filter *domain.ReportFilter) (*domain.IntakeSummary, error) {
	where, args := buildReportFilter(filter)
	if where == "" {
		where = " WHERE r.state = 'APPROVED'"
	} else {
		where += " AND r.state = 'APPROVED'"
	}

	query := `
		SELECT i.product_id, p.name AS product_name,
		       COALESCE(SUM(i.weight_in_quintals), 0) AS total_quintals,
		       COALESCE(SUM(i.base_price), 0) AS total_base_price,
		       COUNT(*) AS item_count
		FROM report_items i
		JOIN reports r ON i.report_id = r.id
		JOIN products p ON i.product_id = p.id` + where + `
		GROUP BY i.product_id, p.name
		ORDER BY total_base_price DESC
	`

	var products []domain.ProductSummary
	if err := sqlx.SelectContext(ctx, r.db, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate product summary: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM reports r` + where
	var reportCount int
	if err := sqlx.GetContext(ctx, r.db, &reportCount, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count approved reports: %w", err)
	}

	summary := &domain.IntakeSummary{
		ReportCount: reportCount,
		Products:    products,
	}
	for _, p := range products {
		summary.TotalQuintals += p.TotalQuintals
		summary.TotalAmount += p.TotalBasePrice
	}
	return summary, nil
}
