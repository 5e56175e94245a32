package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/pricelog"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
)

// --- mock ipo repo ---

type mockIpoRepo struct {
	mu             sync.Mutex
	ipos           []ipo.Ipo
	priceUpdates   map[int64]float64
	updatePriceErr error
}

func newMockIpoRepo(ipos ...ipo.Ipo) *mockIpoRepo {
	return &mockIpoRepo{ipos: ipos, priceUpdates: make(map[int64]float64)}
}

func (m *mockIpoRepo) List(_ context.Context, filter ipo.ListFilter) ([]ipo.Ipo, error) {
	var out []ipo.Ipo
	for _, i := range m.ipos {
		if filter.Status == "" || i.Status == filter.Status {
			out = append(out, i)
		}
	}
	return out, nil
}

func (m *mockIpoRepo) Get(_ context.Context, id int64) (*ipo.Ipo, error) {
	for _, i := range m.ipos {
		if i.ID == id {
			return &i, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockIpoRepo) Create(_ context.Context, _ *ipo.Ipo) error { return nil }
func (m *mockIpoRepo) Update(_ context.Context, _ *ipo.Ipo) error { return nil }
func (m *mockIpoRepo) Delete(_ context.Context, _ int64) error    { return nil }

func (m *mockIpoRepo) UpdatePrice(_ context.Context, id int64, price float64, _ *float64, _ time.Time) error {
	if m.updatePriceErr != nil {
		return m.updatePriceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.priceUpdates[id] = price
	return nil
}

// --- mock price log repo ---

type mockLogRepo struct {
	mu      sync.Mutex
	entries []pricelog.Entry
	err     error
}

func (m *mockLogRepo) Append(_ context.Context, e *pricelog.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *mockLogRepo) ListByIpo(_ context.Context, _ int64) ([]pricelog.Entry, error) {
	return m.entries, nil
}

// --- mock resolver ---

type mockResolver struct {
	mu    sync.Mutex
	calls int
	fn    func(symbol string) (*quote.Quote, error)
}

func (m *mockResolver) Resolve(_ context.Context, symbol string, _ quote.Venue) (*quote.Quote, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(symbol)
}

// --- mock cache ---

type mockCache struct {
	mu       sync.Mutex
	patterns []string
}

func (m *mockCache) DeleteByPattern(pattern string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, pattern)
}

func fptr(v float64) *float64 { return &v }

func outcomeFor(t *testing.T, s *Summary, ipoID int64) Result {
	t.Helper()
	for _, r := range s.Results {
		if r.IpoID == ipoID {
			return r
		}
	}
	t.Fatalf("no result for ipo %d", ipoID)
	return Result{}
}

func TestRun_MixedOutcomes(t *testing.T) {
	repo := newMockIpoRepo(
		ipo.Ipo{ID: 1, Symbol: "AAA", PriceBandHigh: fptr(100), Status: ipo.StatusListed},
		ipo.Ipo{ID: 2, Symbol: "", Status: ipo.StatusListed},
		ipo.Ipo{ID: 3, Symbol: "BBB", PriceBandHigh: fptr(50), Status: ipo.StatusListed},
		ipo.Ipo{ID: 4, Symbol: "CCC", Status: ipo.StatusUpcoming},
	)
	logs := &mockLogRepo{}
	cache := &mockCache{}
	resolver := &mockResolver{fn: func(symbol string) (*quote.Quote, error) {
		switch symbol {
		case "AAA":
			return &quote.Quote{Symbol: "AAA", Price: 120, Source: "yahoo"}, nil
		case "BBB":
			return nil, errors.New("upstream exploded")
		}
		return nil, nil
	}}

	svc := NewService(repo, logs, resolver, cache, WithGroupDelay(0))
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only listed ipos participate; the upcoming one is invisible.
	if summary.Total != 3 {
		t.Errorf("expected total 3, got %d", summary.Total)
	}
	if summary.Updated != 1 {
		t.Errorf("expected 1 updated, got %d", summary.Updated)
	}
	if len(summary.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(summary.Results))
	}

	aaa := outcomeFor(t, summary, 1)
	if aaa.Outcome != OutcomeUpdated {
		t.Errorf("AAA: expected updated, got %s (%s)", aaa.Outcome, aaa.Error)
	}
	if aaa.NewPrice == nil || *aaa.NewPrice != 120 {
		t.Errorf("AAA: expected new price 120, got %v", aaa.NewPrice)
	}
	if aaa.ChangePercent == nil || *aaa.ChangePercent != 20.0 {
		t.Errorf("AAA: expected change percent 20.0, got %v", aaa.ChangePercent)
	}

	if r := outcomeFor(t, summary, 2); r.Outcome != OutcomeSkipped {
		t.Errorf("no-symbol ipo: expected skipped, got %s", r.Outcome)
	}
	if r := outcomeFor(t, summary, 3); r.Outcome != OutcomeError {
		t.Errorf("BBB: expected error, got %s", r.Outcome)
	}

	// Skipped ipos must not hit the resolver.
	if resolver.calls != 2 {
		t.Errorf("expected 2 resolver calls, got %d", resolver.calls)
	}

	// One audit entry for the single success.
	if len(logs.entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs.entries))
	}
	if logs.entries[0].NewPrice != 120 || logs.entries[0].Source != "yahoo" {
		t.Errorf("unexpected log entry: %+v", logs.entries[0])
	}

	// Listing cache is invalidated once per pass.
	if len(cache.patterns) != 1 || cache.patterns[0] != "ipos:*" {
		t.Errorf("expected one ipos:* invalidation, got %v", cache.patterns)
	}
}

func TestRun_ErrorIsolation(t *testing.T) {
	var ipos []ipo.Ipo
	for i := int64(1); i <= 5; i++ {
		ipos = append(ipos, ipo.Ipo{ID: i, Symbol: string(rune('A' + i - 1)), Status: ipo.StatusListed})
	}
	repo := newMockIpoRepo(ipos...)
	logs := &mockLogRepo{}
	resolver := &mockResolver{fn: func(symbol string) (*quote.Quote, error) {
		if symbol == "C" {
			return nil, errors.New("boom")
		}
		if symbol == "D" {
			return nil, nil
		}
		return &quote.Quote{Symbol: symbol, Price: 10, Source: "nse"}, nil
	}}

	svc := NewService(repo, logs, resolver, nil, WithGroupSize(2), WithGroupDelay(time.Millisecond))
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Total != 5 {
		t.Errorf("expected total 5, got %d", summary.Total)
	}
	if summary.Updated != 3 {
		t.Errorf("expected 3 updated, got %d", summary.Updated)
	}
	if r := outcomeFor(t, summary, 3); r.Outcome != OutcomeError || r.Error == "" {
		t.Errorf("ipo 3: expected error outcome with message, got %+v", r)
	}
	if r := outcomeFor(t, summary, 4); r.Outcome != OutcomeNotFound {
		t.Errorf("ipo 4: expected not_found, got %s", r.Outcome)
	}
}

func TestRun_StoreFailureIsErrorOutcome(t *testing.T) {
	repo := newMockIpoRepo(ipo.Ipo{ID: 1, Symbol: "AAA", Status: ipo.StatusListed})
	repo.updatePriceErr = errors.New("disk full")
	logs := &mockLogRepo{}
	resolver := &mockResolver{fn: func(string) (*quote.Quote, error) {
		return &quote.Quote{Price: 10, Source: "yahoo"}, nil
	}}

	svc := NewService(repo, logs, resolver, nil, WithGroupDelay(0))
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r := outcomeFor(t, summary, 1); r.Outcome != OutcomeError {
		t.Errorf("expected error outcome on store failure, got %s", r.Outcome)
	}
	// No audit entry may exist for a failed instrument update.
	if len(logs.entries) != 0 {
		t.Errorf("expected no log entries, got %d", len(logs.entries))
	}
}

func TestRun_AuditFailureIsErrorOutcome(t *testing.T) {
	repo := newMockIpoRepo(ipo.Ipo{ID: 1, Symbol: "AAA", Status: ipo.StatusListed})
	logs := &mockLogRepo{err: errors.New("log table locked")}
	resolver := &mockResolver{fn: func(string) (*quote.Quote, error) {
		return &quote.Quote{Price: 10, Source: "yahoo"}, nil
	}}

	svc := NewService(repo, logs, resolver, nil, WithGroupDelay(0))
	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r := outcomeFor(t, summary, 1); r.Outcome != OutcomeError {
		t.Errorf("expected error outcome on audit failure, got %s", r.Outcome)
	}
}

func TestRun_EmptyEligibleSet(t *testing.T) {
	svc := NewService(newMockIpoRepo(), &mockLogRepo{}, &mockResolver{fn: nil}, nil)

	summary, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Updated != 0 || summary.Total != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if summary.Message == "" {
		t.Error("expected explanatory message for empty set")
	}
}

func TestRun_RerunAppendsIdenticalEntries(t *testing.T) {
	repo := newMockIpoRepo(ipo.Ipo{ID: 1, Symbol: "AAA", PriceBandHigh: fptr(100), Status: ipo.StatusListed})
	logs := &mockLogRepo{}
	resolver := &mockResolver{fn: func(string) (*quote.Quote, error) {
		return &quote.Quote{Price: 120, Source: "yahoo"}, nil
	}}

	svc := NewService(repo, logs, resolver, nil, WithGroupDelay(0))
	for range 2 {
		if _, err := svc.Run(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(logs.entries) != 2 {
		t.Fatalf("expected 2 append-only entries, got %d", len(logs.entries))
	}
	if logs.entries[0].NewPrice != logs.entries[1].NewPrice {
		t.Errorf("expected identical newPrice across reruns, got %f and %f",
			logs.entries[0].NewPrice, logs.entries[1].NewPrice)
	}
}

func TestGainPercent(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		ceiling *float64
		want    *float64
	}{
		{"gain", 120, fptr(100), fptr(20.0)},
		{"loss", 40, fptr(50), fptr(-20.0)},
		{"zero ceiling", 120, fptr(0), nil},
		{"negative ceiling", 120, fptr(-10), nil},
		{"nil ceiling", 120, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GainPercent(tt.price, tt.ceiling)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("GainPercent(%f) = %v, want %v", tt.price, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("GainPercent(%f) = %f, want %f", tt.price, *got, *tt.want)
			}
		})
	}
}
