package fundamentals

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/logger"
)

type fakeStatements struct {
	items []contracts.RawStatementItem
	err   error
}

func (f *fakeStatements) GetStatementItems(ctx context.Context, entityID string) ([]contracts.RawStatementItem, error) {
	return f.items, f.err
}

type fakeInfo struct {
	fields map[string]string
	err    error
}

func (f *fakeInfo) GetLatestInfoSnapshot(ctx context.Context, entityID string) (map[string]string, error) {
	return f.fields, f.err
}

// memoryRatios is an in-memory upsert store keyed like the database table
type memoryRatios struct {
	rows  map[contracts.RatioKey]contracts.CanonicalRatio
	calls int
}

func newMemoryRatios() *memoryRatios {
	return &memoryRatios{rows: make(map[contracts.RatioKey]contracts.CanonicalRatio)}
}

func (m *memoryRatios) UpsertRatios(ctx context.Context, entityID string, ratios []contracts.CanonicalRatio) error {
	m.calls++
	for _, r := range ratios {
		m.rows[r.Key()] = r
	}
	return nil
}

func (m *memoryRatios) GetRatios(ctx context.Context, entityID string) ([]contracts.CanonicalRatio, error) {
	var out []contracts.CanonicalRatio
	for _, def := range Catalog {
		for year := 2030; year >= 2000; year-- {
			if r, ok := m.rows[contracts.RatioKey{EntityID: entityID, FiscalYear: year, Name: def.Name}]; ok {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *memoryRatios) LatestForEntities(ctx context.Context, entityIDs []string, names []string) (map[string][]contracts.CanonicalRatio, error) {
	out := make(map[string][]contracts.CanonicalRatio)
	for _, id := range entityIDs {
		latest := 0
		for k := range m.rows {
			if k.EntityID == id && k.FiscalYear > latest {
				latest = k.FiscalYear
			}
		}
		for _, n := range names {
			if r, ok := m.rows[contracts.RatioKey{EntityID: id, FiscalYear: latest, Name: n}]; ok {
				out[id] = append(out[id], r)
			}
		}
	}
	return out, nil
}

func TestService_DeriveRatios(t *testing.T) {
	store := newMemoryRatios()
	svc := NewService(
		&fakeStatements{items: reconciliationItems()},
		&fakeInfo{fields: map[string]string{"returnOnEquity": "0.25"}},
		store, store, logger.Nop(),
	)

	ok, err := svc.DeriveRatios(context.Background(), "TEST")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.calls)

	count := len(store.rows)
	require.NotZero(t, count)

	// second run overwrites, never appends
	ok, err = svc.DeriveRatios(context.Background(), "TEST")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, store.rows, count)

	roe := store.rows[contracts.RatioKey{EntityID: "TEST", FiscalYear: 2023, Name: RatioReturnOnEquity}]
	assert.Equal(t, contracts.ProvenanceVendor, roe.Provenance)
}

func TestService_DeriveRatios_NoData(t *testing.T) {
	store := newMemoryRatios()
	svc := NewService(&fakeStatements{}, &fakeInfo{}, store, store, logger.Nop())

	ok, err := svc.DeriveRatios(context.Background(), "EMPTY")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.calls)
}

func TestService_DeriveRatios_SourceError(t *testing.T) {
	store := newMemoryRatios()
	svc := NewService(&fakeStatements{err: errors.New("connection refused")}, &fakeInfo{}, store, store, logger.Nop())

	ok, err := svc.DeriveRatios(context.Background(), "TEST")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestService_SnapshotErrorFallsBackToComputed(t *testing.T) {
	store := newMemoryRatios()
	svc := NewService(
		&fakeStatements{items: reconciliationItems()},
		&fakeInfo{err: errors.New("timeout")},
		store, store, logger.Nop(),
	)

	ratios, err := svc.Compute(context.Background(), "TEST")
	require.NoError(t, err)
	for _, r := range ratios {
		assert.Equal(t, contracts.ProvenanceComputed, r.Provenance)
	}
}

func TestService_ReportAndPeers(t *testing.T) {
	store := newMemoryRatios()
	svc := NewService(
		&fakeStatements{items: reconciliationItems()},
		&fakeInfo{fields: map[string]string{
			contracts.InfoLongName: "Test Corp",
			contracts.InfoSector:   "Technology",
		}},
		store, store, logger.Nop(),
	)

	_, err := svc.DeriveRatios(context.Background(), "TEST")
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), "TEST")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(report, "=== Financial Analysis for TEST ==="))
	assert.Contains(t, report, "Company Name: Test Corp")
	assert.Contains(t, report, "[Year 2023]")
	assert.Contains(t, report, "- Return on Equity: 0.2000")
	assert.Less(t, strings.Index(report, "[Year 2023]"), strings.Index(report, "[Year 2022]"))

	peers, err := svc.PeerComparison(context.Background(), []string{"TEST", "NONE"})
	require.NoError(t, err)
	require.Len(t, peers["TEST"], 3) // no gross margin without gross profit
	assert.Empty(t, peers["NONE"])
}

func TestFormatReport_Empty(t *testing.T) {
	assert.Equal(t, "No financial data available for X.", FormatReport("X", nil, contracts.NewInfoSnapshot(nil)))
}
