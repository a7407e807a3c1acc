package alphavantage

import (
	"context"
	"net/url"
)

// SymbolMatch is one symbol search hit
type SymbolMatch struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Region   string `json:"region"`
	Currency string `json:"currency"`
}

type searchResponse struct {
	BestMatches []map[string]string `json:"bestMatches"`
}

// SearchSymbol looks up listed symbols by keyword
func (c *Client) SearchSymbol(ctx context.Context, keyword string) ([]SymbolMatch, error) {
	var resp searchResponse
	if err := c.query(ctx, "SYMBOL_SEARCH", url.Values{"keywords": {keyword}}, &resp); err != nil {
		return nil, err
	}

	out := make([]SymbolMatch, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		out = append(out, SymbolMatch{
			Symbol:   m["1. symbol"],
			Name:     m["2. name"],
			Type:     m["3. type"],
			Region:   m["4. region"],
			Currency: m["8. currency"],
		})
	}
	return out, nil
}
