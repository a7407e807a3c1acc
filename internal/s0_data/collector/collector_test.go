package collector

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/internal/external/yahoo"
	"github.com/wonny/finlens/backend/pkg/logger"
)

func day(m, d int) time.Time { return time.Date(2024, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func ptr(v float64) *float64 { return &v }

type fakeVendor struct {
	quoteErr  error
	failStmt  contracts.StatementType
	bars      []contracts.PriceBar
	mu        sync.Mutex
	fullCalls int
}

func (f *fakeVendor) Quote(_ context.Context, _ string) (float64, error) {
	if f.quoteErr != nil {
		return 0, f.quoteErr
	}
	return 100, nil
}

func (f *fakeVendor) Overview(_ context.Context, _ string) (map[string]string, error) {
	return map[string]string{"Name": "Acme", "ForwardPE": "20"}, nil
}

func (f *fakeVendor) Statements(_ context.Context, symbol string, stmt contracts.StatementType) ([]contracts.RawStatementItem, error) {
	if stmt == f.failStmt {
		return nil, errors.New("throttled")
	}
	return []contracts.RawStatementItem{{
		EntityID: symbol, Statement: stmt, Item: "X", PeriodEnd: day(12, 31), Value: 1,
	}}, nil
}

func (f *fakeVendor) DailyAdjusted(_ context.Context, _ string, full bool) ([]contracts.PriceBar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if full {
		f.fullCalls++
	}
	return append([]contracts.PriceBar(nil), f.bars...), nil
}

type fakeLive struct{ price float64 }

func (f fakeLive) Quote(_ context.Context, symbol string) (yahoo.Quote, error) {
	if f.price == 0 {
		return yahoo.Quote{}, errors.New("down")
	}
	return yahoo.Quote{Symbol: symbol, Price: f.price, Name: "Acme Corp"}, nil
}

type memoryStores struct {
	mu      sync.Mutex
	items   []contracts.RawStatementItem
	fields  []contracts.RawInfoField
	latest  time.Time
	saved   map[string][]contracts.PriceBar
	factors []contracts.FactorObservation
}

func (m *memoryStores) SaveItems(_ context.Context, items []contracts.RawStatementItem) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, items...)
	return len(items), nil
}

func (m *memoryStores) SaveFields(_ context.Context, fields []contracts.RawInfoField) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields = append(m.fields, fields...)
	return nil
}

func (m *memoryStores) GetLatestDate(_ context.Context, _ string) (time.Time, error) {
	return m.latest, nil
}

func (m *memoryStores) SaveBatch(_ context.Context, entityID string, bars []contracts.PriceBar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]contracts.PriceBar)
	}
	m.saved[entityID] = bars
	return nil
}

type factorStore struct{ obs []contracts.FactorObservation }

func (f *factorStore) SaveBatch(_ context.Context, obs []contracts.FactorObservation) error {
	f.obs = obs
	return nil
}

type fakeFactors struct{}

func (fakeFactors) FetchMonthly(context.Context) ([]contracts.FactorObservation, error) {
	return []contracts.FactorObservation{{Month: day(1, 1), MktRF: 0.01}, {Month: day(2, 1), MktRF: 0.02}}, nil
}

func newCollector(v *fakeVendor, live LiveQuoter, m *memoryStores, fs *factorStore) *Collector {
	c := NewCollector(v, live, fakeFactors{}, Stores{Statements: m, Info: m, Prices: m, Factors: fs}, logger.Nop())
	c.now = func() time.Time { return day(5, 1) }
	return c
}

func fieldMap(fields []contracts.RawInfoField) map[string]string {
	out := make(map[string]string)
	for _, f := range fields {
		out[f.Key] = f.Value
	}
	return out
}

func TestCollectEntity_FullRun(t *testing.T) {
	v := &fakeVendor{bars: []contracts.PriceBar{{Date: day(1, 2), Close: ptr(10)}, {Date: day(1, 3), Close: ptr(11)}}}
	m := &memoryStores{}
	c := newCollector(v, nil, m, &factorStore{})

	res := c.CollectEntity(context.Background(), " acme ")
	require.NoError(t, res.Error)
	assert.Equal(t, "ACME", res.EntityID)
	assert.Equal(t, 3, res.StatementCount)
	assert.Equal(t, 2, res.PriceCount)
	assert.Equal(t, 1, v.fullCalls, "first run pulls full history")

	fields := fieldMap(m.fields)
	assert.Equal(t, "100", fields[contracts.InfoCurrentPrice])
	assert.Equal(t, "5", fields[contracts.InfoForwardEPS])
	assert.Equal(t, "Acme", fields[contracts.InfoLongName])
}

func TestCollectEntity_LivePriceWins(t *testing.T) {
	v := &fakeVendor{quoteErr: errors.New("throttled")}
	m := &memoryStores{}
	c := newCollector(v, fakeLive{price: 120}, m, &factorStore{})

	res := c.CollectEntity(context.Background(), "ACME")
	require.NoError(t, res.Error)

	fields := fieldMap(m.fields)
	assert.Equal(t, "120", fields[contracts.InfoCurrentPrice])
	assert.Equal(t, "6", fields[contracts.InfoForwardEPS])
	assert.Equal(t, "Acme Corp", fields["shortName"])

	count := 0
	for _, f := range m.fields {
		if f.Key == contracts.InfoCurrentPrice {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCollectEntity_PartialFailure(t *testing.T) {
	v := &fakeVendor{failStmt: contracts.StatementBalance}
	m := &memoryStores{}
	c := newCollector(v, fakeLive{}, m, &factorStore{})

	res := c.CollectEntity(context.Background(), "ACME")
	require.Error(t, res.Error)
	assert.Contains(t, res.Error.Error(), "BalanceSheet")
	assert.Equal(t, 2, res.StatementCount)
}

func TestCollectEntity_IncrementalPrices(t *testing.T) {
	v := &fakeVendor{bars: []contracts.PriceBar{
		{Date: day(1, 2), Close: ptr(10)},
		{Date: day(1, 3), Close: ptr(11)},
		{Date: day(1, 4), Close: ptr(12)},
	}}
	m := &memoryStores{latest: day(1, 3)}
	c := newCollector(v, nil, m, &factorStore{})

	res := c.CollectEntity(context.Background(), "ACME")
	require.NoError(t, res.Error)
	assert.Equal(t, 0, v.fullCalls)
	require.Len(t, m.saved["ACME"], 2)
	assert.Equal(t, day(1, 3), m.saved["ACME"][0].Date)
}

func TestCollectAll(t *testing.T) {
	v := &fakeVendor{}
	m := &memoryStores{}
	c := newCollector(v, nil, m, &factorStore{})

	results := c.CollectAll(context.Background(), []string{"AAA", "BBB", "CCC"}, Config{Workers: 2})
	require.Len(t, results, 3)

	ids := make([]string, 0, 3)
	for _, r := range results {
		assert.NoError(t, r.Error)
		ids = append(ids, r.EntityID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, ids)
}

func TestCollectAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newCollector(&fakeVendor{}, nil, &memoryStores{}, &factorStore{})
	results := c.CollectAll(ctx, []string{"AAA", "BBB"}, Config{})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
}

func TestRefreshFactors(t *testing.T) {
	fs := &factorStore{}
	c := newCollector(&fakeVendor{}, nil, &memoryStores{}, fs)

	n, err := c.RefreshFactors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, fs.obs, 2)

	c.factors = nil
	_, err = c.RefreshFactors(context.Background())
	assert.Error(t, err)
}
