package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/finlens/backend/internal/contracts"
)

// PriceRepository implements contracts.PriceSource
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetPriceSeries retrieves daily bars for an entity within the date range, oldest first
func (r *PriceRepository) GetPriceSeries(ctx context.Context, entityID string, from, to time.Time) ([]contracts.PriceBar, error) {
	query := `
		SELECT trade_date, open, high, low, close, adj_close, COALESCE(volume, 0)
		FROM fin.daily_prices
		WHERE entity_id = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, entityID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	bars := make([]contracts.PriceBar, 0)
	for rows.Next() {
		var b contracts.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.AdjClose, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// GetLatestDate returns the most recent stored trade date, zero when none
func (r *PriceRepository) GetLatestDate(ctx context.Context, entityID string) (time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(trade_date) FROM fin.daily_prices WHERE entity_id = $1`, entityID,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest price date: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// SaveBatch upserts daily bars (vendors revise adjusted closes after splits and dividends)
func (r *PriceRepository) SaveBatch(ctx context.Context, entityID string, bars []contracts.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO fin.daily_prices (entity_id, trade_date, open, high, low, close, adj_close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (entity_id, trade_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			adj_close = EXCLUDED.adj_close,
			volume = EXCLUDED.volume`

	for _, b := range bars {
		batch.Queue(query, entityID, b.Date, b.Open, b.High, b.Low, b.Close, b.AdjClose, b.Volume)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert price for %s: %w", entityID, err)
		}
	}
	return nil
}
