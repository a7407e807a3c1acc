package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/httputil"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// Client handles communication with the Alpha Vantage query API
// ⭐ SSOT: Alpha Vantage API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string
}

// NewClient creates a new Alpha Vantage client.
// The free tier allows 5 requests per minute; pass a rate limited httputil client.
func NewClient(cfg config.AlphaVantageConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("vendor", "alphavantage"),
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// query calls one API function and decodes the JSON body into dest.
// Vendor throttling and error notes arrive with HTTP 200 and are turned into errors.
func (c *Client) query(ctx context.Context, function string, params url.Values, dest interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("ALPHA_VANTAGE_API_KEY is not set")
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	body, err := c.httpClient.GetBytes(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return fmt.Errorf("%s request failed: %w", function, err)
	}

	if err := vendorNotice(function, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s response: %w", function, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"function": function,
		"symbol":   params.Get("symbol"),
	}).Debug("Alpha Vantage query completed")
	return nil
}

// vendorNotice detects the single-key bodies used for errors and throttling notes
func vendorNotice(function string, body []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil || len(top) != 1 {
		return nil
	}
	for _, key := range []string{"Error Message", "Note", "Information"} {
		raw, ok := top[key]
		if !ok {
			continue
		}
		var msg string
		_ = json.Unmarshal(raw, &msg)
		return fmt.Errorf("%s: %s: %s", function, strings.ToLower(key), msg)
	}
	return nil
}

// parseNumber parses a vendor number, treating "None", "-" and blanks as absent
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "none", "null", "-", "n/a", "nan":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
