package database

import (
	"context"
	"fmt"
)

// schema holds the idempotent DDL for the analytics store.
// Raw rows are immutable once written; ratios are upserted per (entity, year, name).
var schema = []string{
	`CREATE SCHEMA IF NOT EXISTS fin`,

	`CREATE TABLE IF NOT EXISTS fin.company_info (
		entity_id  TEXT NOT NULL,
		query_date DATE NOT NULL,
		data_key   TEXT NOT NULL,
		data_value TEXT NOT NULL,
		PRIMARY KEY (entity_id, data_key, query_date)
	)`,

	`CREATE TABLE IF NOT EXISTS fin.statement_items (
		entity_id      TEXT NOT NULL,
		statement_type TEXT NOT NULL,
		item           TEXT NOT NULL,
		period_end     DATE NOT NULL,
		value          DOUBLE PRECISION,
		PRIMARY KEY (entity_id, statement_type, item, period_end)
	)`,

	`CREATE TABLE IF NOT EXISTS fin.financial_ratios (
		entity_id   TEXT NOT NULL,
		fiscal_year INT  NOT NULL,
		category    TEXT NOT NULL,
		ratio_name  TEXT NOT NULL,
		ratio_value DOUBLE PRECISION NOT NULL,
		provenance  TEXT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (entity_id, fiscal_year, ratio_name)
	)`,

	`CREATE TABLE IF NOT EXISTS fin.daily_prices (
		entity_id  TEXT NOT NULL,
		trade_date DATE NOT NULL,
		open       DOUBLE PRECISION,
		high       DOUBLE PRECISION,
		low        DOUBLE PRECISION,
		close      DOUBLE PRECISION,
		adj_close  DOUBLE PRECISION,
		volume     BIGINT,
		PRIMARY KEY (entity_id, trade_date)
	)`,

	`CREATE TABLE IF NOT EXISTS fin.factor_returns (
		month  DATE PRIMARY KEY,
		mkt_rf DOUBLE PRECISION NOT NULL,
		smb    DOUBLE PRECISION NOT NULL,
		hml    DOUBLE PRECISION NOT NULL,
		rf     DOUBLE PRECISION NOT NULL
	)`,
}

// Migrate creates the tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}
	return nil
}
