package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"competition-voting/internal/domain/ledger"
	"competition-voting/internal/domain/payment"
	"competition-voting/internal/domain/stats"
	"competition-voting/internal/platform/apperr"
)

// @Summary     Competition statistics
// @Tags        stats
// @Security    BearerAuth
// @Produce     json
// @Param       id   path      string  true  "Competition ID"
// @Success     200  {object}  stats.CompetitionStats
// @Failure     404  {object}  map[string]string  "not found"
// @Router      /api/v1/admin/competitions/{id}/stats [get]
func (h *Handler) handleCompetitionStats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.CompetitionStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// @Summary     Admin dashboard
// @Tags        stats
// @Security    BearerAuth
// @Produce     json
// @Param       competition_id  query     string  false  "narrow the rankings to one competition"
// @Success     200             {object}  stats.Dashboard
// @Failure     404             {object}  map[string]string  "not found"
// @Router      /api/v1/admin/dashboard [get]
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.stats.Dashboard(r.Context(), r.URL.Query().Get("competition_id"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// @Summary     Vote share per contestant
// @Tags        stats
// @Security    BearerAuth
// @Produce     json
// @Param       competition_id  query    string  false  "Competition ID"
// @Success     200             {array}  stats.ContestantShare
// @Router      /api/v1/admin/analytics [get]
func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	shares, err := h.stats.ContestantShares(r.Context(), r.URL.Query().Get("competition_id"))
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}

// @Summary     Transaction log
// @Tags        transactions
// @Security    BearerAuth
// @Produce     json
// @Param       competition_id  query    string  false  "Competition ID"
// @Param       status          query    string  false  "pending, completed or failed"
// @Param       method          query    string  false  "mtn, orange or card"
// @Param       q               query    string  false  "contestant name, transaction id or phone"
// @Success     200             {array}  stats.TransactionView
// @Failure     400             {object} map[string]string  "invalid filter"
// @Router      /api/v1/admin/transactions [get]
func (h *Handler) handleTransactionLog(w http.ResponseWriter, r *http.Request) {
	f, err := parseLogFilter(r)
	if err != nil {
		errorResponse(w, err)
		return
	}
	views, err := h.stats.TransactionLog(r.Context(), f)
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// @Summary     Transaction totals
// @Tags        transactions
// @Security    BearerAuth
// @Produce     json
// @Success     200  {object}  stats.Summary
// @Router      /api/v1/admin/transactions/summary [get]
func (h *Handler) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.TransactionSummary(r.Context())
	if err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// @Summary     Export transactions as CSV
// @Tags        transactions
// @Security    BearerAuth
// @Produce     text/csv
// @Param       competition_id  query  string  false  "Competition ID"
// @Param       status          query  string  false  "pending, completed or failed"
// @Param       method          query  string  false  "mtn, orange or card"
// @Param       q               query  string  false  "contestant name, transaction id or phone"
// @Success     200  {file}  file
// @Router      /api/v1/admin/transactions/export [get]
func (h *Handler) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseLogFilter(r)
	if err != nil {
		errorResponse(w, err)
		return
	}

	// Buffer so a failure can still be reported as JSON.
	var buf bytes.Buffer
	if err := h.stats.ExportCSV(r.Context(), &buf, f); err != nil {
		errorResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+stats.ExportFileName(h.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func parseLogFilter(r *http.Request) (stats.LogFilter, error) {
	q := r.URL.Query()
	f := stats.LogFilter{
		CompetitionID: q.Get("competition_id"),
		Search:        q.Get("q"),
	}
	if s := strings.ToLower(q.Get("status")); s != "" && s != "all" {
		status := ledger.TransactionStatus(s)
		if !status.Valid() {
			return f, apperr.BadRequest("invalid_status", "status must be one of pending, completed, failed", nil)
		}
		f.Status = &status
	}
	if m := strings.ToLower(q.Get("method")); m != "" && m != "all" {
		if !payment.ValidMethodName(m) {
			return f, apperr.BadRequest("invalid_method", "method must be one of mtn, orange, card", nil)
		}
		f.Method = m
	}
	return f, nil
}
