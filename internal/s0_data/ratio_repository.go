package s0_data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// RatioRepository implements contracts.RatioSink and contracts.RatioReader
// ⭐ SSOT: 재무비율 저장소는 여기서만
type RatioRepository struct {
	pool *pgxpool.Pool
}

// NewRatioRepository creates a new ratio repository
func NewRatioRepository(pool *pgxpool.Pool) *RatioRepository {
	return &RatioRepository{pool: pool}
}

// UpsertRatios writes the whole ratio set of an entity in one batch.
// Rows are keyed by (entity, fiscal year, ratio name); a re-run overwrites.
func (r *RatioRepository) UpsertRatios(ctx context.Context, entityID string, ratios []contracts.CanonicalRatio) error {
	if len(ratios) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO fin.financial_ratios
			(entity_id, fiscal_year, category, ratio_name, ratio_value, provenance, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (entity_id, fiscal_year, ratio_name) DO UPDATE SET
			category = EXCLUDED.category,
			ratio_value = EXCLUDED.ratio_value,
			provenance = EXCLUDED.provenance,
			updated_at = NOW()`

	for _, rt := range ratios {
		if rt.EntityID != entityID {
			return fmt.Errorf("ratio %s belongs to %s, not %s", rt.Name, rt.EntityID, entityID)
		}
		batch.Queue(query, rt.EntityID, rt.FiscalYear, string(rt.Category), rt.Name, rt.Value, string(rt.Provenance))
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, batch)
	for range ratios {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("upsert ratio: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetRatios returns the persisted ratios, most recent year first
func (r *RatioRepository) GetRatios(ctx context.Context, entityID string) ([]contracts.CanonicalRatio, error) {
	query := `
		SELECT entity_id, fiscal_year, category, ratio_name, ratio_value, provenance
		FROM fin.financial_ratios
		WHERE entity_id = $1
		ORDER BY fiscal_year DESC, category, ratio_name
	`

	rows, err := r.pool.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("query ratios: %w", err)
	}
	defer rows.Close()

	return scanRatios(rows)
}

// LatestForEntities returns the named ratios of each entity's most recent fiscal year
func (r *RatioRepository) LatestForEntities(ctx context.Context, entityIDs []string, names []string) (map[string][]contracts.CanonicalRatio, error) {
	query := `
		SELECT f.entity_id, f.fiscal_year, f.category, f.ratio_name, f.ratio_value, f.provenance
		FROM fin.financial_ratios f
		JOIN (
			SELECT entity_id, MAX(fiscal_year) AS fiscal_year
			FROM fin.financial_ratios
			WHERE entity_id = ANY($1)
			GROUP BY entity_id
		) latest ON latest.entity_id = f.entity_id AND latest.fiscal_year = f.fiscal_year
		WHERE f.ratio_name = ANY($2)
		ORDER BY f.entity_id, f.ratio_name
	`

	rows, err := r.pool.Query(ctx, query, entityIDs, names)
	if err != nil {
		return nil, fmt.Errorf("query latest ratios: %w", err)
	}
	defer rows.Close()

	ratios, err := scanRatios(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]contracts.CanonicalRatio, len(entityIDs))
	for _, rt := range ratios {
		out[rt.EntityID] = append(out[rt.EntityID], rt)
	}
	return out, nil
}

func scanRatios(rows pgx.Rows) ([]contracts.CanonicalRatio, error) {
	out := make([]contracts.CanonicalRatio, 0)
	for rows.Next() {
		var rt contracts.CanonicalRatio
		var category, provenance string
		if err := rows.Scan(&rt.EntityID, &rt.FiscalYear, &category, &rt.Name, &rt.Value, &provenance); err != nil {
			return nil, fmt.Errorf("scan ratio: %w", err)
		}
		rt.Category = contracts.RatioCategory(category)
		rt.Provenance = contracts.Provenance(provenance)
		out = append(out, rt)
	}
	return out, rows.Err()
}
