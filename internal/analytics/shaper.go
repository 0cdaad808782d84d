package analytics

// Response envelopes. Lists ride inside {data: [...]}; slices are never nil
// so an empty result serializes as [] rather than null.

type CampaignsResponse struct {
	Data  []CampaignRow `json:"data"`
	Total int           `json:"total"`
}

type CampaignsCompareResponse struct {
	Data []CampaignCompareRow `json:"data"`
}

type WoWResponse struct {
	Data []WoWRow `json:"data"`
}

type ScatterResponse struct {
	Data []ScatterPoint `json:"data"`
}

type AnomaliesResponse struct {
	Data []AnomalyRow `json:"data"`
}

type ShareResponse struct {
	Data []ShareRow `json:"data"`
}

type ShareCompareResponse struct {
	Data []ShareCompareRow `json:"data"`
}

type UTMSourcesResponse struct {
	Data []UTMSourceRow `json:"data"`
}

// TopMoversResponse buckets classified campaigns. scale rows are winners,
// pause rows are losers.
type TopMoversResponse struct {
	Winners []MoverRow `json:"winners"`
	Losers  []MoverRow `json:"losers"`
	Watch   []MoverRow `json:"watch"`
}

type BudgetRecoResponse struct {
	Data []MoverRow `json:"data"`
}

type PaidSplitResponse struct {
	Data []PaidSplitRow `json:"data"`
}

type FunnelResponse struct {
	Data []FunnelRow `json:"data"`
}

type ProductsResponse struct {
	Data []ProductRow `json:"data"`
}

type CoverageResponse struct {
	Data []CoverageRow `json:"data"`
}

// AttributionSummaryResponse carries the grouped rows plus totals computed
// from the same row set; no extra query is issued for them.
type AttributionSummaryResponse struct {
	Data                  []AttributionGroupRow `json:"data"`
	TotalLeads            int64                 `json:"total_leads"`
	TotalContracts        int64                 `json:"total_contracts"`
	TotalRevenue          float64               `json:"total_revenue"`
	OverallConversionRate *float64              `json:"overall_conversion_rate"`
}

type TimelineResponse struct {
	Data []TimelinePoint `json:"data"`
}

type ContractsBreakdownResponse struct {
	Data []ContractsBreakdownRow `json:"data"`
}

type InsightsResponse struct {
	Data []InsightRow `json:"data"`
}

type CreativesResponse struct {
	Data []CreativeRow `json:"data"`
}

// truncate caps a generic row slice to limit when limit > 0.
func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

// nonNil replaces a nil slice with an empty one so JSON emits [].
func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
