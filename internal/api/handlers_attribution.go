package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetPlatformShare serves each platform's slice of total leads.
func (h *Handlers) GetPlatformShare(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.PlatformShare(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetPlatformShareCompare serves shares for both windows plus the
// percentage-point delta.
func (h *Handlers) GetPlatformShareCompare(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.svc.PlatformShareCompare(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetUTMSources serves per-source aggregates, most leads first.
func (h *Handlers) GetUTMSources(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Limit, err = parseLimit(r, 50, 500); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.UTMSources(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetPaidSplitPlatforms serves the paid/organic lead split per platform.
func (h *Handlers) GetPaidSplitPlatforms(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.PaidSplitPlatforms(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetPaidSplitCampaigns serves the paid/organic split per attributed
// campaign, optionally scoped to one platform.
func (h *Handlers) GetPaidSplitCampaigns(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	platform, err := parsePlatform(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.PaidSplitCampaigns(ctx, req, platform)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetFunnel serves the daily impression-to-contract funnel.
func (h *Handlers) GetFunnel(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	platform, err := parsePlatform(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.Funnel(ctx, req, platform)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetProducts serves per-product revenue aggregates.
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.svc.Products(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetAttributionCoverage serves daily attribution coverage percentages.
func (h *Handlers) GetAttributionCoverage(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.AttributionCoverage(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetAttributionSummary serves contracts grouped by attribution type with
// window totals.
func (h *Handlers) GetAttributionSummary(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.AttributionSummary(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetContractsTimeline serves contracts bucketed by day, week or month.
func (h *Handlers) GetContractsTimeline(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	groupBy, err := parseGroupBy(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.ContractsTimeline(ctx, req, groupBy)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetContractsByPlatform serves window contracts split by platform.
func (h *Handlers) GetContractsByPlatform(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.ContractsByPlatform(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetContractsBySource serves window contracts split by utm_source.
func (h *Handlers) GetContractsBySource(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	platform, err := parsePlatform(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.ContractsBySource(ctx, req, platform)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetCreatives serves creative-level aggregates overlapping the window.
func (h *Handlers) GetCreatives(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if req.Limit, err = parseLimit(r, 50, 500); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.Creatives(ctx, req)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetCreativesByCampaign serves one campaign's creatives; a campaign with
// no rows in the window is a 404.
func (h *Handlers) GetCreativesByCampaign(w http.ResponseWriter, r *http.Request) {
	req, err := commonParams(r)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	campaignID := chi.URLParam(r, "campaignID")
	if campaignID == "" {
		h.respondServiceError(w, r, badRequestf("missing campaign id"))
		return
	}

	ctx, cancel := h.requestCtx(r)
	defer cancel()

	resp, err := h.svc.CreativesByCampaign(ctx, req, campaignID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}
