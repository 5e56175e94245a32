package quote

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/metrics"
)

// Resolver tries an ordered list of sources and returns the first
// structurally valid quote.
type Resolver struct {
	sources []Source
}

// NewResolver creates a resolver over the given sources. Priority is the
// argument order.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve returns the first usable quote for symbol, or (nil, nil) when
// every source fails or has no data. Per-source failures are logged and
// swallowed; the returned error is reserved for context cancellation.
func (r *Resolver) Resolve(ctx context.Context, symbol string, venue Venue) (*Quote, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, nil
	}
	if venue == "" {
		venue = VenueNSE
	}

	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q, err := src.Fetch(ctx, symbol, venue)
		if err != nil {
			metrics.QuoteAttemptsTotal.WithLabelValues(src.Name(), "error").Inc()
			slog.Warn("quote source failed", "source", src.Name(), "symbol", symbol, "error", err)
			continue
		}
		if !valid(q) {
			metrics.QuoteAttemptsTotal.WithLabelValues(src.Name(), "miss").Inc()
			slog.Debug("quote source had no data", "source", src.Name(), "symbol", symbol)
			continue
		}

		metrics.QuoteAttemptsTotal.WithLabelValues(src.Name(), "hit").Inc()
		q.Symbol = symbol
		q.Source = src.Name()
		if q.FetchedAt.IsZero() {
			q.FetchedAt = time.Now().UTC()
		}
		slog.Info("resolved quote", "source", src.Name(), "symbol", symbol, "price", q.Price)
		return q, nil
	}

	slog.Info("no source produced a quote", "symbol", symbol, "venue", string(venue))
	return nil, nil
}

// valid rejects quotes a source should never have produced: nil results and
// zero, negative, or non-finite prices.
func valid(q *Quote) bool {
	if q == nil {
		return false
	}
	return q.Price > 0 && !math.IsNaN(q.Price) && !math.IsInf(q.Price, 0)
}
