package famafrench

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/finlens/backend/internal/contracts"
	"github.com/wonny/finlens/backend/pkg/config"
	"github.com/wonny/finlens/backend/pkg/httputil"
	"github.com/wonny/finlens/backend/pkg/logger"
)

// Client downloads the monthly three-factor file from the Kenneth French data library
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewClient creates a new factor library client
func NewClient(cfg config.FamaFrenchConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("vendor", "famafrench"),
		url:        cfg.FactorsURL,
	}
}

// FetchMonthly downloads and parses the monthly factor table
func (c *Client) FetchMonthly(ctx context.Context) ([]contracts.FactorObservation, error) {
	body, err := c.httpClient.GetBytes(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("download factors: %w", err)
	}

	obs, err := ParseZip(body)
	if err != nil {
		return nil, err
	}

	if len(obs) > 0 {
		c.logger.WithFields(map[string]interface{}{
			"months": len(obs),
			"first":  obs[0].Month.Format("2006-01"),
			"last":   obs[len(obs)-1].Month.Format("2006-01"),
		}).Info("Fetched Fama-French factors")
	}
	return obs, nil
}

// ParseZip reads the first CSV member of the downloaded archive
func ParseZip(data []byte) ([]contracts.FactorObservation, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open factor archive: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		return ParseCSV(rc)
	}
	return nil, fmt.Errorf("factor archive has no csv member")
}

var hundred = decimal.NewFromInt(100)

// ParseCSV parses the monthly section of the factor file.
// Rows are YYYYMM followed by Mkt-RF, SMB, HML and RF in percent.
// The annual section that follows is ignored.
func ParseCSV(r io.Reader) ([]contracts.FactorObservation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []contracts.FactorObservation
	started := false

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read factor csv: %w", err)
		}

		month, ok := parseMonth(record)
		if !ok {
			if started {
				break
			}
			continue
		}
		started = true

		if len(record) < 5 {
			return nil, fmt.Errorf("factor row %s: expected 5 columns, got %d", record[0], len(record))
		}

		var vals [4]float64
		for i := range vals {
			d, err := decimal.NewFromString(strings.TrimSpace(record[i+1]))
			if err != nil {
				return nil, fmt.Errorf("factor row %s: %w", record[0], err)
			}
			vals[i] = d.Div(hundred).InexactFloat64()
		}

		out = append(out, contracts.FactorObservation{
			Month: month,
			MktRF: vals[0],
			SMB:   vals[1],
			HML:   vals[2],
			RF:    vals[3],
		})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no monthly factor rows: %w", contracts.ErrMissingData)
	}
	return out, nil
}

// parseMonth accepts a six digit YYYYMM first column
func parseMonth(record []string) (time.Time, bool) {
	if len(record) == 0 {
		return time.Time{}, false
	}
	key := strings.TrimSpace(record[0])
	if len(key) != 6 {
		return time.Time{}, false
	}
	t, err := time.Parse("200601", key)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
