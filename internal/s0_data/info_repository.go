package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// InfoRepository implements contracts.InfoSnapshotSource over company_info
type InfoRepository struct {
	pool *pgxpool.Pool
}

// NewInfoRepository creates a new company info repository
func NewInfoRepository(pool *pgxpool.Pool) *InfoRepository {
	return &InfoRepository{pool: pool}
}

// GetLatestInfoSnapshot returns the fields of the most recent query date.
// An entity without a snapshot yields an empty map.
func (r *InfoRepository) GetLatestInfoSnapshot(ctx context.Context, entityID string) (map[string]string, error) {
	query := `
		SELECT data_key, data_value
		FROM fin.company_info
		WHERE entity_id = $1
		  AND query_date = (SELECT MAX(query_date) FROM fin.company_info WHERE entity_id = $1)
	`

	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("query company info: %w", err)
	}
	defer rows.Close()

	fields := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan company info: %w", err)
		}
		fields[k] = v
	}
	return fields, rows.Err()
}

// SaveFields upserts snapshot fields; a re-fetch on the same day replaces the value
func (r *InfoRepository) SaveFields(ctx context.Context, fields []contracts.RawInfoField) error {
	if len(fields) == 0 {
		return nil
	}

	query := `
		INSERT INTO fin.company_info (entity_id, query_date, data_key, data_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entity_id, data_key, query_date) DO UPDATE SET
			data_value = EXCLUDED.data_value
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, f := range fields {
		if _, err := tx.Exec(ctx, query, f.EntityID, f.QueryDate, f.Key, f.Value); err != nil {
			return fmt.Errorf("upsert info %s for %s: %w", f.Key, f.EntityID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
