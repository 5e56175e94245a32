// Package reconcile sweeps every listed IPO, resolves a live quote for it,
// and persists the updated price plus an audit log entry.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/metrics"
	"github.com/BhavinDalsaniya/IPOApplication/internal/pricelog"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
)

type Outcome string

const (
	OutcomeUpdated  Outcome = "updated"
	OutcomeNotFound Outcome = "not_found"
	OutcomeError    Outcome = "error"
	OutcomeSkipped  Outcome = "skipped"
)

// Result is the per-instrument outcome of one pass.
type Result struct {
	IpoID         int64    `json:"ipoId"`
	Symbol        string   `json:"symbol,omitempty"`
	Outcome       Outcome  `json:"outcome"`
	OldPrice      *float64 `json:"oldPrice,omitempty"`
	NewPrice      *float64 `json:"newPrice,omitempty"`
	ChangePercent *float64 `json:"changePercent,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type Summary struct {
	Total   int      `json:"total"`
	Updated int      `json:"updated"`
	Message string   `json:"message,omitempty"`
	Results []Result `json:"results"`
}

// Resolver is the quote lookup dependency. (nil, nil) means no source had
// data; a non-nil error is an unexpected failure.
type Resolver interface {
	Resolve(ctx context.Context, symbol string, venue quote.Venue) (*quote.Quote, error)
}

// Invalidator is the listing-view cache; one prefix delete per pass.
type Invalidator interface {
	DeleteByPattern(pattern string)
}

type Service struct {
	repo     ipo.Repository
	logs     pricelog.Repository
	resolver Resolver
	cache    Invalidator

	groupSize  int
	groupDelay time.Duration
}

type Option func(*Service)

// WithGroupSize caps concurrent quote lookups per group.
func WithGroupSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.groupSize = n
		}
	}
}

// WithGroupDelay sets the pause between concurrency groups.
func WithGroupDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.groupDelay = d
		}
	}
}

func NewService(repo ipo.Repository, logs pricelog.Repository, resolver Resolver, cache Invalidator, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		logs:       logs,
		resolver:   resolver,
		cache:      cache,
		groupSize:  10,
		groupDelay: 500 * time.Millisecond,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes one reconciliation pass over all listed IPOs. Individual
// failures are reported per instrument; the pass itself only fails when the
// eligible set cannot be read.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	listed, err := s.repo.List(ctx, ipo.ListFilter{Status: ipo.StatusListed})
	if err != nil {
		return nil, fmt.Errorf("list listed ipos: %w", err)
	}

	summary := &Summary{Total: len(listed)}
	if len(listed) == 0 {
		summary.Message = "no listed ipos to update"
		return summary, nil
	}

	// Instruments without a symbol are reported without touching any source.
	var eligible []ipo.Ipo
	for _, inst := range listed {
		if inst.Symbol == "" {
			summary.Results = append(summary.Results, Result{IpoID: inst.ID, Outcome: OutcomeSkipped})
			continue
		}
		eligible = append(eligible, inst)
	}

	// Fixed-size groups with a pause in between keep peak outbound request
	// counts below the upstream rate limits.
	for gi := 0; gi < len(eligible); gi += s.groupSize {
		end := min(gi+s.groupSize, len(eligible))
		group := eligible[gi:end]

		results := make([]Result, len(group))
		g, gctx := errgroup.WithContext(ctx)
		for i, inst := range group {
			g.Go(func() error {
				results[i] = s.reconcileOne(gctx, inst)
				return nil
			})
		}
		_ = g.Wait()
		summary.Results = append(summary.Results, results...)

		if end < len(eligible) && s.groupDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.groupDelay):
			}
		}
	}

	for _, r := range summary.Results {
		metrics.PriceUpdatesTotal.WithLabelValues(string(r.Outcome)).Inc()
		if r.Outcome == OutcomeUpdated {
			summary.Updated++
		}
	}

	if s.cache != nil {
		s.cache.DeleteByPattern("ipos:*")
	}

	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	slog.Info("reconciliation pass finished",
		"total", summary.Total, "updated", summary.Updated,
		"duration", time.Since(start).String())
	return summary, nil
}

func (s *Service) reconcileOne(ctx context.Context, inst ipo.Ipo) Result {
	res := Result{IpoID: inst.ID, Symbol: inst.Symbol}

	q, err := s.resolver.Resolve(ctx, inst.Symbol, venueFor(inst.Exchange))
	if err != nil {
		res.Outcome = OutcomeError
		res.Error = err.Error()
		return res
	}
	if q == nil {
		res.Outcome = OutcomeNotFound
		return res
	}

	changePct := GainPercent(q.Price, inst.PriceBandHigh)
	now := time.Now().UTC()

	if err := s.repo.UpdatePrice(ctx, inst.ID, q.Price, changePct, now); err != nil {
		res.Outcome = OutcomeError
		res.Error = fmt.Sprintf("update price: %v", err)
		return res
	}

	entry := &pricelog.Entry{
		IpoID:         inst.ID,
		Symbol:        inst.Symbol,
		OldPrice:      inst.LatestPrice,
		NewPrice:      q.Price,
		ChangePercent: changePct,
		Source:        q.Source,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		res.Outcome = OutcomeError
		res.Error = fmt.Sprintf("append price log: %v", err)
		return res
	}

	res.Outcome = OutcomeUpdated
	res.OldPrice = inst.LatestPrice
	res.NewPrice = &q.Price
	res.ChangePercent = changePct
	return res
}

// GainPercent is the listing gain relative to the offer band ceiling.
// Returns nil when the ceiling is unknown or non-positive; never Inf or NaN.
func GainPercent(price float64, ceiling *float64) *float64 {
	if ceiling == nil || *ceiling <= 0 {
		return nil
	}
	pct := (price - *ceiling) / *ceiling * 100
	return &pct
}

func venueFor(ex ipo.Exchange) quote.Venue {
	if ex == ipo.ExchangeBSE {
		return quote.VenueBSE
	}
	return quote.VenueNSE
}
