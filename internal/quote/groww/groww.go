// Package groww implements the tertiary quote source. The broker's
// latest-price endpoint only serves NSE and carries no change figures, so
// quotes from here always report zero change.
package groww

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
)

const defaultEndpoint = "https://groww.in/v1/api/stocks_data/v1/accord_points/exchange/NSE/segment/CASH/latest_prices_ohlc"

type Source struct {
	client   *http.Client
	endpoint string
}

func New(opts ...Option) *Source {
	s := &Source{
		client:   &http.Client{Timeout: 8 * time.Second},
		endpoint: defaultEndpoint,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type Option func(*Source)

func WithClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

func WithEndpoint(ep string) Option {
	return func(s *Source) { s.endpoint = ep }
}

func (s *Source) Name() string { return "groww" }

func (s *Source) Fetch(ctx context.Context, symbol string, _ quote.Venue) (*quote.Quote, error) {
	reqURL := fmt.Sprintf("%s/%s", s.endpoint, symbol)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", quote.UserAgent)
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groww returned HTTP %d for %s", res.StatusCode, symbol)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		LTP float64 `json:"ltp"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse groww response: %w", err)
	}

	if resp.LTP <= 0 {
		return nil, nil
	}

	return &quote.Quote{
		Symbol:    symbol,
		Price:     resp.LTP,
		Currency:  "INR",
		FetchedAt: time.Now().UTC(),
	}, nil
}
