package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// FactorRepository implements contracts.FactorSource over cached factor returns
type FactorRepository struct {
	pool *pgxpool.Pool
}

// NewFactorRepository creates a new factor repository
func NewFactorRepository(pool *pgxpool.Pool) *FactorRepository {
	return &FactorRepository{pool: pool}
}

// GetFactorSeries returns monthly observations in [from, to], oldest first
func (r *FactorRepository) GetFactorSeries(ctx context.Context, from, to time.Time) ([]contracts.FactorObservation, error) {
	query := `
		SELECT month, mkt_rf, smb, hml, rf
		FROM fin.factor_returns
		WHERE month BETWEEN $1 AND $2
		ORDER BY month ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query factors: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.FactorObservation, 0)
	for rows.Next() {
		var f contracts.FactorObservation
		if err := rows.Scan(&f.Month, &f.MktRF, &f.SMB, &f.HML, &f.RF); err != nil {
			return nil, fmt.Errorf("scan factor: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SaveBatch upserts factor months; the library revises recent months
func (r *FactorRepository) SaveBatch(ctx context.Context, obs []contracts.FactorObservation) error {
	if len(obs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO fin.factor_returns (month, mkt_rf, smb, hml, rf)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (month) DO UPDATE SET
			mkt_rf = EXCLUDED.mkt_rf,
			smb = EXCLUDED.smb,
			hml = EXCLUDED.hml,
			rf = EXCLUDED.rf`

	for _, f := range obs {
		batch.Queue(query, f.Month, f.MktRF, f.SMB, f.HML, f.RF)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range obs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert factor month: %w", err)
		}
	}
	return nil
}
