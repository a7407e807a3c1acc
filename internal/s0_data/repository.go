package s0_data

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository bundles the S0 stores that share one pool
type Repository struct {
	db *pgxpool.Pool

	Statements *StatementRepository
	Info       *InfoRepository
	Ratios     *RatioRepository
	Prices     *PriceRepository
	Factors    *FactorRepository
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:         db,
		Statements: NewStatementRepository(db),
		Info:       NewInfoRepository(db),
		Ratios:     NewRatioRepository(db),
		Prices:     NewPriceRepository(db),
		Factors:    NewFactorRepository(db),
	}
}

// Pool returns the underlying database pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}
