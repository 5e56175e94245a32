package server

import (
	"context"
	"net/http"

	"github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/metrics"
	"github.com/BhavinDalsaniya/IPOApplication/internal/pricelog"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
	"github.com/BhavinDalsaniya/IPOApplication/internal/reconcile"
)

// Reconciler runs one full price reconciliation pass.
type Reconciler interface {
	Run(ctx context.Context) (*reconcile.Summary, error)
}

// QuoteResolver serves the direct quote-lookup endpoint.
type QuoteResolver interface {
	Resolve(ctx context.Context, symbol string, venue quote.Venue) (*quote.Quote, error)
}

type Deps struct {
	IpoSvc     *ipo.Service
	Logs       pricelog.Repository
	Resolver   QuoteResolver
	Reconciler Reconciler

	// CronSecret guards the refresh endpoint when non-empty.
	CronSecret string
}

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(deps Deps) http.Handler {
	h := &handler{deps: deps}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/v1/ipos", h.listIpos)
	mux.HandleFunc("POST /api/v1/ipos", h.createIpo)
	mux.HandleFunc("GET /api/v1/ipos/{id}", h.getIpo)
	mux.HandleFunc("PUT /api/v1/ipos/{id}", h.updateIpo)
	mux.HandleFunc("DELETE /api/v1/ipos/{id}", h.deleteIpo)
	mux.HandleFunc("GET /api/v1/ipos/{id}/price-logs", h.listPriceLogs)

	mux.HandleFunc("GET /api/v1/quote/{symbol}", h.getQuote)
	mux.HandleFunc("POST /api/v1/prices/refresh", h.refreshPrices)

	// Apply middleware stack: recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
