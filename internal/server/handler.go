package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/BhavinDalsaniya/IPOApplication/internal/apperror"
	"github.com/BhavinDalsaniya/IPOApplication/internal/ipo"
	"github.com/BhavinDalsaniya/IPOApplication/internal/quote"
)

type handler struct {
	deps Deps
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listIpos(w http.ResponseWriter, r *http.Request) {
	filter := ipo.ListFilter{Status: ipo.Status(r.URL.Query().Get("status"))}
	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	ipos, err := h.deps.IpoSvc.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ipos)
}

func (h *handler) getIpo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	i, err := h.deps.IpoSvc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

func (h *handler) createIpo(w http.ResponseWriter, r *http.Request) {
	var req ipo.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	i, err := h.deps.IpoSvc.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, i)
}

func (h *handler) updateIpo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req ipo.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	i, err := h.deps.IpoSvc.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

func (h *handler) deleteIpo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.deps.IpoSvc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *handler) listPriceLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// 404 for unknown ipos rather than an empty log list.
	if _, err := h.deps.IpoSvc.Get(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	entries, err := h.deps.Logs.ListByIpo(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handler) getQuote(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.PathValue("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	venue := quote.VenueNSE
	switch strings.ToUpper(r.URL.Query().Get("exchange")) {
	case "", "NSE":
	case "BSE":
		venue = quote.VenueBSE
	default:
		writeError(w, http.StatusBadRequest, "exchange must be NSE or BSE")
		return
	}

	q, err := h.deps.Resolver.Resolve(r.Context(), symbol, venue)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if q == nil {
		writeError(w, http.StatusNotFound, "no source produced a quote")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// refreshPrices runs one reconciliation pass synchronously. Both the hourly
// cron and the admin's manual refresh land here; when a cron secret is
// configured it must match before any work starts.
func (h *handler) refreshPrices(w http.ResponseWriter, r *http.Request) {
	if h.deps.CronSecret != "" {
		got := r.Header.Get("X-Cron-Secret")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.deps.CronSecret)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid cron secret")
			return
		}
	}

	summary, err := h.deps.Reconciler.Run(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	if ae, ok := err.(*apperror.AppError); ok {
		writeError(w, ae.HTTPStatus(), ae.Message())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
