package api

import (
	"net/http"
	"strconv"
)

// GetCampaigns serves per-campaign aggregates for a single window.
func (h *Handlers) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Limit, err = parseLimit(r, 50, 500); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.MinSpend, err = parseFloatParam(r, "min_spend", 0); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.Campaigns(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetCampaignsCompare serves per-campaign current/previous comparisons,
// including campaigns present on only one side.
func (h *Handlers) GetCampaignsCompare(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Prev, err = parsePrevWindow(r); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Limit, err = parseLimit(r, 50, 500); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.MinSpend, err = parseFloatParam(r, "min_spend", 0); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.CampaignsCompare(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetCampaignsWoW serves the fixed calendar week-over-week comparison. The
// windows are derived from today, not request parameters.
func (h *Handlers) GetCampaignsWoW(w http.ResponseWriter, r *http.Request) {
	platforms, err := parsePlatforms(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.CampaignsWoW(ctx, platforms)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetScatterMatrix serves the CPL/ROAS bubble chart points.
func (h *Handlers) GetScatterMatrix(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.MinLeads, err = parseFloatParam(r, "min_leads", 1); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.MinSpend, err = parseFloatParam(r, "min_spend", 0); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.ScatterMatrix(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetAnomalies serves campaigns whose current window departs from their
// trailing baseline.
func (h *Handlers) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Limit, err = parseLimit(r, 50, 200); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.Anomalies(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetTopMovers serves winners/losers/watch buckets, each capped to n.
func (h *Handlers) GetTopMovers(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Prev, err = parsePrevWindow(r); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	thresholds, err := parseThresholds(r, h.reco)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	n := 5
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			h.respondServiceError(w, r, badRequestf("n must be an integer between 1 and 50"))
			return
		}
		n = parsed
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.TopMovers(ctx, req, thresholds, n)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetBudgetRecommendations serves classified campaigns as one tagged list,
// scale first.
func (h *Handlers) GetBudgetRecommendations(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Prev, err = parsePrevWindow(r); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Limit, err = parseLimit(r, 20, 200); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	thresholds, err := parseThresholds(r, h.reco)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.BudgetRecommendations(ctx, req, thresholds)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetCampaignInsights serves campaigns labeled with qualitative performance
// buckets.
func (h *Handlers) GetCampaignInsights(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Limit, err = parseLimit(r, 100, 500); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.CampaignInsights(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
