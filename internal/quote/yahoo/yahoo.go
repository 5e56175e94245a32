// Package yahoo implements the primary quote source using the Yahoo
// Finance v8 chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
)

const (
	defaultEndpoint = "https://query1.finance.yahoo.com/v8/finance/chart"

	suffixNSE = ".NS"
	suffixBSE = ".BO"
)

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

func (s *Source) Name() string { return "yahoo" }

// RequestSymbol maps a ticker to the venue-suffixed symbol Yahoo expects.
// An already-suffixed symbol is stripped first so "ABC.NS" and "ABC"
// resolve identically.
func RequestSymbol(symbol string, venue quote.Venue) string {
	upper := strings.ToUpper(symbol)
	for _, suf := range []string{suffixNSE, suffixBSE} {
		if strings.HasSuffix(upper, suf) {
			symbol = symbol[:len(symbol)-len(suf)]
			break
		}
	}
	if venue == quote.VenueBSE {
		return symbol + suffixBSE
	}
	return symbol + suffixNSE
}

// chartResponse is the subset of the v8 chart payload we read. Close and
// open series carry nulls for missing data points.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				ChartPreviousClose *float64 `json:"chartPreviousClose"`
				PreviousClose      *float64 `json:"previousClose"`
				Currency           string   `json:"currency"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
					Open  []*float64 `json:"open"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *Source) Fetch(ctx context.Context, symbol string, venue quote.Venue) (*quote.Quote, error) {
	reqSymbol := RequestSymbol(symbol, venue)

	reqURL := fmt.Sprintf("%s/%s?interval=1d&range=1d", s.endpoint, reqSymbol)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", quote.UserAgent)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned HTTP %d for %s", res.StatusCode, reqSymbol)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse yahoo response: %w", err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}

	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}
	result := resp.Chart.Result[0]

	var closes, opens []*float64
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
		opens = result.Indicators.Quote[0].Open
	}

	current, ok := pick(result.Meta.RegularMarketPrice, lastValid(closes))
	if !ok {
		return nil, nil
	}

	// Previous close falls back through the meta fields, then the first
	// open of the session, then current itself (degenerate zero change).
	prev, ok := pick(result.Meta.ChartPreviousClose, result.Meta.PreviousClose, firstValid(opens))
	if !ok {
		prev = current
	}

	change := current - prev
	changePct := 0.0
	if prev != 0 {
		changePct = change / prev * 100
	}

	currency := result.Meta.Currency
	if currency == "" {
		currency = "INR"
	}

	return &quote.Quote{
		Symbol:        symbol,
		Price:         current,
		Change:        change,
		ChangePercent: changePct,
		Currency:      currency,
		FetchedAt:     time.Now().UTC(),
	}, nil
}

// pick returns the first non-nil positive candidate.
func pick(candidates ...*float64) (float64, bool) {
	for _, c := range candidates {
		if c != nil && *c > 0 {
			return *c, true
		}
	}
	return 0, false
}

func lastValid(series []*float64) *float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if series[i] != nil {
			return series[i]
		}
	}
	return nil
}

func firstValid(series []*float64) *float64 {
	for _, v := range series {
		if v != nil {
			return v
		}
	}
	return nil
}
