package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// Quote is the live price block of one symbol
type Quote struct {
	Symbol string
	Price  float64
	Name   string
}

// Client reads live quotes through the Yahoo quote summary endpoint
// ⭐ SSOT: 실시간 가격 보정은 이 클라이언트에서만
type Client struct {
	logger  *logger.Logger
	timeout time.Duration
	fetch   func(ctx context.Context, symbol string) (Quote, error)
}

// NewClient creates a new Yahoo quote client
func NewClient(timeout time.Duration, log *logger.Logger) *Client {
	yc := yfgo.NewClient()
	return &Client{
		logger:  log.WithField("vendor", "yahoo"),
		timeout: timeout,
		fetch: func(ctx context.Context, symbol string) (Quote, error) {
			res, err := yc.QuoteSummaryTyped(ctx, symbol, []yfgo.QuoteSummaryModule{yfgo.ModulePrice})
			if err != nil {
				return Quote{}, err
			}
			if res.Price == nil || res.Price.RegularMarketPrice.Raw == nil {
				return Quote{}, fmt.Errorf("no price for %s: %w", symbol, contracts.ErrMissingData)
			}

			q := Quote{Symbol: symbol, Price: *res.Price.RegularMarketPrice.Raw}
			if res.Price.ShortName != "" {
				q.Name = res.Price.ShortName
			} else {
				q.Name = res.Price.LongName
			}
			return q, nil
		},
	}
}

// Quote returns the regular market price of symbol
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, fmt.Errorf("empty symbol")
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q, err := c.fetch(cctx, symbol)
	if err != nil {
		return Quote{}, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	if q.Price <= 0 {
		return Quote{}, fmt.Errorf("yahoo quote %s: non-positive price: %w", symbol, contracts.ErrMissingData)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"price":  q.Price,
	}).Debug("Fetched live quote")
	return q, nil
}

// InfoFields turns a live quote into snapshot rows for queryDate
func (q Quote) InfoFields(entityID string, queryDate time.Time) []contracts.RawInfoField {
	day := time.Date(queryDate.Year(), queryDate.Month(), queryDate.Day(), 0, 0, 0, 0, time.UTC)
	out := []contracts.RawInfoField{{
		EntityID:  entityID,
		QueryDate: day,
		Key:       contracts.InfoCurrentPrice,
		Value:     fmt.Sprintf("%g", q.Price),
	}}
	if q.Name != "" {
		out = append(out, contracts.RawInfoField{
			EntityID:  entityID,
			QueryDate: day,
			Key:       "shortName",
			Value:     q.Name,
		})
	}
	return out
}
