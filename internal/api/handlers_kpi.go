package api

import (
	"net/http"

	"github.com/adlytics/funnel-api/internal/analytics"
)

// GetKPI serves the aggregate KPI card.
func (h *Handlers) GetKPI(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	summary, err := h.svc.KPI(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GetKPICompare serves the KPI card for the current window paired with the
// previous one.
func (h *Handlers) GetKPICompare(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Prev, err = parsePrevWindow(r); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Prev, err = parseCompareMode(r, req.Prev); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	cmp, err := h.svc.KPICompare(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cmp)
}

// GetLeadsTrend serves the daily leads series. Days with no rows are
// omitted, not zero-filled.
func (h *Handlers) GetLeadsTrend(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	points, err := h.svc.LeadsTrend(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if points == nil {
		points = []analytics.LeadsTrendPoint{}
	}
	respondJSON(w, http.StatusOK, points)
}

// GetSpendTrend serves the daily spend series.
func (h *Handlers) GetSpendTrend(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	points, err := h.svc.SpendTrend(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if points == nil {
		points = []analytics.SpendTrendPoint{}
	}
	respondJSON(w, http.StatusOK, points)
}

// GetLeadsTrendCompare serves the date-aligned leads comparison. Every day
// of the current window appears; missing sides contribute zero.
func (h *Handlers) GetLeadsTrendCompare(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Prev, err = parsePrevWindow(r); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	points, err := h.svc.LeadsTrendCompare(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

// GetSpendTrendCompare serves the date-aligned spend comparison.
func (h *Handlers) GetSpendTrendCompare(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Prev, err = parsePrevWindow(r); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	points, err := h.svc.SpendTrendCompare(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, points)
}

// GetMetricsTrend serves the full derived-metric daily series.
func (h *Handlers) GetMetricsTrend(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	points, err := h.svc.MetricsTrend(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if points == nil {
		points = []analytics.MetricsTrendPoint{}
	}
	respondJSON(w, http.StatusOK, points)
}
