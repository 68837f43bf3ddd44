package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS suppliers (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	representative TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	price_per_quintal NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE SEQUENCE IF NOT EXISTS report_ticket_seq START 1;

CREATE TABLE IF NOT EXISTS reports (
	id UUID PRIMARY KEY,
	report_date TIMESTAMPTZ NOT NULL,
	ticket_number TEXT NOT NULL UNIQUE,
	plate_number TEXT NOT NULL,
	supplier_id UUID NOT NULL REFERENCES suppliers(id),
	user_id UUID NOT NULL REFERENCES users(id),
	gross_weight NUMERIC(14,4) NOT NULL,
	tare_weight NUMERIC(14,4) NOT NULL DEFAULT 0,
	net_weight NUMERIC(14,4) NOT NULL DEFAULT 0,
	extra_percentage NUMERIC(7,4) NOT NULL DEFAULT 0,
	base_price NUMERIC(14,2) NOT NULL DEFAULT 0,
	total_price NUMERIC(14,2) NOT NULL DEFAULT 0,
	driver_name TEXT NOT NULL,
	state TEXT NOT NULL DEFAULT 'PENDING'
		CHECK (state IN ('PENDING', 'APPROVED', 'CANCELLED')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reports_report_date ON reports (report_date DESC);
CREATE INDEX IF NOT EXISTS idx_reports_supplier ON reports (supplier_id);
CREATE INDEX IF NOT EXISTS idx_reports_state ON reports (state);

CREATE TABLE IF NOT EXISTS report_items (
	id UUID PRIMARY KEY,
	report_id UUID NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	product_id UUID NOT NULL REFERENCES products(id),
	weight NUMERIC(14,4) NOT NULL,
	weight_unit TEXT NOT NULL,
	weight_in_quintals NUMERIC(14,4) NOT NULL,
	price_per_quintal NUMERIC(12,2) NOT NULL,
	base_price NUMERIC(14,2) NOT NULL,
	discount_weight NUMERIC(14,4) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_report_items_report ON report_items (report_id);
CREATE INDEX IF NOT EXISTS idx_report_items_product ON report_items (product_id);

CREATE TABLE IF NOT EXISTS system_config (
	id TEXT PRIMARY KEY,
	extra_percentage NUMERIC(7,4) NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// InitSchema creates all tables, indexes and the ticket sequence. Statements
// are idempotent so the seed tool can run it repeatedly.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
