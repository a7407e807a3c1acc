package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// StatementRepository implements contracts.StatementSource
// ⭐ SSOT: 재무제표 원본 저장소는 여기서만
type StatementRepository struct {
	pool *pgxpool.Pool
}

// NewStatementRepository creates a new statement repository
func NewStatementRepository(pool *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{pool: pool}
}

// GetStatementItems retrieves every raw line item of an entity
func (r *StatementRepository) GetStatementItems(ctx context.Context, entityID string) ([]contracts.RawStatementItem, error) {
	query := `
		SELECT entity_id, statement_type, item, period_end, value
		FROM fin.statement_items
		WHERE entity_id = $1 AND value IS NOT NULL
		ORDER BY statement_type, period_end DESC, item
	`

	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("query statement items: %w", err)
	}
	defer rows.Close()

	items := make([]contracts.RawStatementItem, 0)
	for rows.Next() {
		var it contracts.RawStatementItem
		var stmt string
		if err := rows.Scan(&it.EntityID, &stmt, &it.Item, &it.PeriodEnd, &it.Value); err != nil {
			return nil, fmt.Errorf("scan statement item: %w", err)
		}
		it.Statement = contracts.StatementType(stmt)
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveItems inserts raw rows. Stored rows are immutable, so conflicts are ignored.
func (r *StatementRepository) SaveItems(ctx context.Context, items []contracts.RawStatementItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO fin.statement_items (entity_id, statement_type, item, period_end, value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (entity_id, statement_type, item, period_end) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, it := range items {
		if !it.Statement.Valid() {
			return 0, fmt.Errorf("invalid statement type %q", it.Statement)
		}
		tag, err := tx.Exec(ctx, query, it.EntityID, string(it.Statement), it.Item, it.PeriodEnd, it.Value)
		if err != nil {
			return 0, fmt.Errorf("insert %s/%s for %s: %w", it.Statement, it.Item, it.EntityID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}
