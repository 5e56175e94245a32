// Package nse implements the secondary quote source against the exchange's
// own quote-equity endpoint. Symbols are sent as-is, without venue suffixing.
package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
)

const defaultEndpoint = "https://www.nseindia.com/api/quote-equity"

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

func (s *Source) Name() string { return "nse" }

func (s *Source) Fetch(ctx context.Context, symbol string, _ quote.Venue) (*quote.Quote, error) {
	reqURL := fmt.Sprintf("%s?symbol=%s", s.endpoint, symbol)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	// The exchange blocks requests without browser-looking headers.
	req.Header.Set("User-Agent", quote.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nse returned HTTP %d for %s", res.StatusCode, symbol)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		PriceInfo struct {
			LastPrice float64 `json:"lastPrice"`
			Change    float64 `json:"change"`
			PChange   float64 `json:"pChange"`
		} `json:"priceInfo"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse nse response: %w", err)
	}

	// A delisted or unknown symbol comes back with a zero lastPrice.
	if resp.PriceInfo.LastPrice <= 0 {
		return nil, nil
	}

	return &quote.Quote{
		Symbol:        symbol,
		Price:         resp.PriceInfo.LastPrice,
		Change:        resp.PriceInfo.Change,
		ChangePercent: resp.PriceInfo.PChange,
		Currency:      "INR",
		FetchedAt:     time.Now().UTC(),
	}, nil
}
