package fundamentals

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// HeadlineRatios are compared across peers
var HeadlineRatios = []string{
	RatioReturnOnEquity,
	RatioGrossMargin,
	RatioNetProfitMargin,
	RatioDebtToEquity,
}

// Service loads raw rows, derives ratios and persists them
type Service struct {
	statements contracts.StatementSource
	info       contracts.InfoSnapshotSource
	sink       contracts.RatioSink
	reader     contracts.RatioReader
	deriver    *Deriver
	logger     *logger.Logger
}

// NewService creates a ratio service. reader may be nil when reports are not needed.
func NewService(
	statements contracts.StatementSource,
	info contracts.InfoSnapshotSource,
	sink contracts.RatioSink,
	reader contracts.RatioReader,
	log *logger.Logger,
) *Service {
	return &Service{
		statements: statements,
		info:       info,
		sink:       sink,
		reader:     reader,
		deriver:    NewDeriver(log),
		logger:     log,
	}
}

// Compute derives the ratio set without persisting it.
// An entity with no statement rows yields ErrMissingData.
func (s *Service) Compute(ctx context.Context, entityID string) ([]contracts.CanonicalRatio, error) {
	items, err := s.statements.GetStatementItems(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("load statements: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no statement rows for %s: %w", entityID, contracts.ErrMissingData)
	}

	fields, err := s.info.GetLatestInfoSnapshot(ctx, entityID)
	if err != nil {
		// the snapshot only feeds reconciliation, computed values still stand
		s.logger.WithEntity(entityID).WithError(err).Warn("Info snapshot unavailable")
		fields = nil
	}

	return s.deriver.Derive(entityID, items, contracts.NewInfoSnapshot(fields))
}

// DeriveRatios computes and upserts all ratios for one entity in a single batch.
// It reports false with no error when the entity has nothing to derive from.
func (s *Service) DeriveRatios(ctx context.Context, entityID string) (bool, error) {
	log := s.logger.WithEntity(entityID)

	ratios, err := s.Compute(ctx, entityID)
	if errors.Is(err, contracts.ErrMissingData) {
		log.WithError(err).Info("No statement data, skipping ratio derivation")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := s.sink.UpsertRatios(ctx, entityID, ratios); err != nil {
		return false, fmt.Errorf("upsert ratios: %w", err)
	}

	log.WithField("count", len(ratios)).Info("Ratios derived")
	return true, nil
}

// Ratios returns the persisted ratios of an entity
func (s *Service) Ratios(ctx context.Context, entityID string) ([]contracts.CanonicalRatio, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("ratio reader not configured")
	}
	return s.reader.GetRatios(ctx, entityID)
}

// Report renders the persisted ratios together with the company snapshot
func (s *Service) Report(ctx context.Context, entityID string) (string, error) {
	ratios, err := s.Ratios(ctx, entityID)
	if err != nil {
		return "", err
	}
	fields, err := s.info.GetLatestInfoSnapshot(ctx, entityID)
	if err != nil {
		fields = nil
	}
	return FormatReport(entityID, ratios, contracts.NewInfoSnapshot(fields)), nil
}

// PeerComparison returns the headline ratios of the latest year of each entity
func (s *Service) PeerComparison(ctx context.Context, entityIDs []string) (map[string][]contracts.CanonicalRatio, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("ratio reader not configured")
	}
	if len(entityIDs) == 0 {
		return map[string][]contracts.CanonicalRatio{}, nil
	}
	return s.reader.LatestForEntities(ctx, entityIDs, HeadlineRatios)
}
