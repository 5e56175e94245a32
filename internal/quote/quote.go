// Package quote resolves live equity quotes by trying upstream price
// sources in a fixed priority order.
package quote

import (
	"context"
	"strings"
	"time"
)

// Venue is the listing market a symbol belongs to. It affects request
// symbol suffixing for sources that need it.
type Venue string

const (
	VenueNSE Venue = "NSE"
	VenueBSE Venue = "BSE"
)

// UserAgent is sent on every upstream request. At least one source rejects
// default Go client identifiers outright.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Quote is a single point-in-time price observation, normalized across
// sources.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Currency      string    `json:"currency"`
	Source        string    `json:"source"`
	FetchedAt     time.Time `json:"fetchedAt"`
}

// Source is one upstream price provider. Fetch returns (nil, nil) when the
// source has no usable data for the symbol; errors are reserved for
// transport and decoding failures. Either way the resolver moves on to the
// next source.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string, venue Venue) (*Quote, error)
}

// NormalizeSymbol uppercases and trims a raw ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
