package analytics

import "time"

const dateLayout = "2006-01-02"

// Window is a closed interval of whole days in the warehouse timezone. The
// service neither converts timezones nor shifts dates.
type Window struct {
	From time.Time
	To   time.Time
}

// Days returns the number of days in the window, inclusive.
func (w Window) Days() int {
	return int(w.To.Sub(w.From).Hours()/24) + 1
}

// Previous returns the symmetric preceding window: the same number of days
// ending the day before From.
func (w Window) Previous() Window {
	n := w.Days()
	return Window{
		From: w.From.AddDate(0, 0, -n),
		To:   w.From.AddDate(0, 0, -1),
	}
}

// FromStr and ToStr render the bounds as YYYY-MM-DD bind values.
func (w Window) FromStr() string { return w.From.Format(dateLayout) }
func (w Window) ToStr() string   { return w.To.Format(dateLayout) }

// Request carries the validated common parameters of an analytics call.
type Request struct {
	Window    Window
	Platforms []string // canonical, sorted, empty means all
	Limit     int
	MinSpend  float64
	MinLeads  float64
	// Prev overrides the auto-computed previous window on compare endpoints.
	Prev *Window
}

// PrevWindow resolves the previous window: the explicit override when set,
// otherwise the symmetric preceding interval.
func (r Request) PrevWindow() Window {
	if r.Prev != nil {
		return *r.Prev
	}
	return r.Window.Previous()
}

// Thresholds is the request-scoped configuration for the budget
// recommendation / top-movers classifier.
type Thresholds struct {
	TargetROAS float64
	KillROAS   float64
	TargetCPL  float64 // 0 disables the CPL acceptance path
	MinLeads   float64
	MinSpend   float64
}

// --- row records ---------------------------------------------------------

// KPISummary is the aggregate card for a window and platform set.
type KPISummary struct {
	Leads     int64    `json:"leads"`
	Contracts int64    `json:"n_contracts"`
	Revenue   float64  `json:"revenue"`
	Spend     float64  `json:"spend"`
	CPL       *float64 `json:"cpl"`
	ROAS      *float64 `json:"roas"`
}

// KPICompare pairs the current and previous KPI cards with deltas.
type KPICompare struct {
	LeadsCur         int64    `json:"leads_cur"`
	LeadsPrev        int64    `json:"leads_prev"`
	LeadsDiff        int64    `json:"leads_diff"`
	LeadsDiffPct     *float64 `json:"leads_diff_pct"`
	ContractsCur     int64    `json:"n_contracts_cur"`
	ContractsPrev    int64    `json:"n_contracts_prev"`
	ContractsDiff    int64    `json:"n_contracts_diff"`
	ContractsDiffPct *float64 `json:"n_contracts_diff_pct"`
	RevenueCur       float64  `json:"revenue_cur"`
	RevenuePrev      float64  `json:"revenue_prev"`
	RevenueDiff      float64  `json:"revenue_diff"`
	RevenueDiffPct   *float64 `json:"revenue_diff_pct"`
	SpendCur         float64  `json:"spend_cur"`
	SpendPrev        float64  `json:"spend_prev"`
	SpendDiff        float64  `json:"spend_diff"`
	SpendDiffPct     *float64 `json:"spend_diff_pct"`
	CPLCur           *float64 `json:"cpl_cur"`
	CPLPrev          *float64 `json:"cpl_prev"`
	ROASCur          *float64 `json:"roas_cur"`
	ROASPrev         *float64 `json:"roas_prev"`
}

// TrendPoint is one day of a single-metric trend. Missing days are omitted.
type TrendPoint struct {
	Date  string  `json:"dt"`
	Value float64 `json:"-"`
}

// LeadsTrendPoint and SpendTrendPoint fix the metric name in the payload.
type LeadsTrendPoint struct {
	Date  string `json:"dt"`
	Leads int64  `json:"leads"`
}

type SpendTrendPoint struct {
	Date  string  `json:"dt"`
	Spend float64 `json:"spend"`
}

// TrendComparePoint aligns a previous-window day onto the current calendar.
// Days missing on either side contribute zero.
type TrendComparePoint struct {
	Date      string  `json:"dt"`
	Cur       float64 `json:"-"`
	PrevShift float64 `json:"-"`
}

type LeadsTrendComparePoint struct {
	Date             string `json:"dt"`
	LeadsCur         int64  `json:"leads_cur"`
	LeadsPrevShifted int64  `json:"leads_prev_shifted"`
}

type SpendTrendComparePoint struct {
	Date             string  `json:"dt"`
	SpendCur         float64 `json:"spend_cur"`
	SpendPrevShifted float64 `json:"spend_prev_shifted"`
}

// CampaignRow is the per-campaign aggregate for a single window.
type CampaignRow struct {
	Platform     string   `json:"platform"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Leads        int64    `json:"leads"`
	Contracts    int64    `json:"n_contracts"`
	Revenue      float64  `json:"revenue"`
	Spend        float64  `json:"spend"`
	CPL          *float64 `json:"cpl"`
	ROAS         *float64 `json:"roas"`
}

// CampaignCompareRow joins a campaign's current and previous windows.
type CampaignCompareRow struct {
	Platform     string   `json:"platform"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	LeadsCur     int64    `json:"leads_cur"`
	LeadsPrev    int64    `json:"leads_prev"`
	LeadsDiff    int64    `json:"leads_diff"`
	LeadsDiffPct *float64 `json:"leads_diff_pct"`
	SpendCur     float64  `json:"spend_cur"`
	SpendPrev    float64  `json:"spend_prev"`
	SpendDiff    float64  `json:"spend_diff"`
	SpendDiffPct *float64 `json:"spend_diff_pct"`
	RevenueCur   float64  `json:"revenue_cur"`
	RevenuePrev  float64  `json:"revenue_prev"`
	CPLCur       *float64 `json:"cpl_cur"`
	CPLPrev      *float64 `json:"cpl_prev"`
	ROASCur      *float64 `json:"roas_cur"`
	ROASPrev     *float64 `json:"roas_prev"`
	IsNew        bool     `json:"is_new"`
	IsLost       bool     `json:"is_lost"`
}

// WoWRow is a campaign compared across fixed calendar-week bounds.
type WoWRow struct {
	Platform     string   `json:"platform"`
	CampaignName string   `json:"campaign_name"`
	LeadsCur     int64    `json:"leads_cur"`
	LeadsPrev    int64    `json:"leads_prev"`
	LeadsDiff    int64    `json:"leads_diff"`
	LeadsDiffPct *float64 `json:"leads_diff_pct"`
	SpendCur     float64  `json:"spend_cur"`
	SpendPrev    float64  `json:"spend_prev"`
	CPLCur       *float64 `json:"cpl_cur"`
	CPLPrev      *float64 `json:"cpl_prev"`
}

// ScatterPoint is one bubble of the CPL/ROAS scatter matrix; Spend is the
// bubble size.
type ScatterPoint struct {
	Platform     string   `json:"platform"`
	CampaignID   string   `json:"campaign_id"`
	CampaignName string   `json:"campaign_name"`
	Leads        int64    `json:"leads"`
	Spend        float64  `json:"spend"`
	CPL          *float64 `json:"cpl"`
	ROAS         *float64 `json:"roas"`
}

// Anomaly types and severities form closed sets; every emitted row carries
// exactly one of each.
const (
	AnomalySpikeCPL   = "spike_cpl"
	AnomalyDropLeads  = "drop_leads"
	AnomalySpikeSpend = "spike_spend"

	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// AnomalyRow flags a campaign whose current window departs from its
// trailing baseline.
type AnomalyRow struct {
	Platform      string   `json:"platform"`
	CampaignID    string   `json:"campaign_id"`
	CampaignName  string   `json:"campaign_name"`
	AnomalyType   string   `json:"anomaly_type"`
	Severity      string   `json:"severity"`
	CurrentCPL    *float64 `json:"current_cpl"`
	BaselineCPL   *float64 `json:"baseline_cpl"`
	CurrentLeads  float64  `json:"current_leads"`
	BaselineLeads float64  `json:"baseline_leads"`
	CurrentSpend  float64  `json:"current_spend"`
	BaselineSpend float64  `json:"baseline_spend"`
	DeviationPct  *float64 `json:"deviation_pct"`
}

// ShareRow is one platform's slice of total leads.
type ShareRow struct {
	Platform string   `json:"platform"`
	Leads    int64    `json:"leads"`
	SharePct *float64 `json:"share_pct"`
}

// ShareCompareRow adds the previous window and the percentage-point delta
// (not a relative percent).
type ShareCompareRow struct {
	Platform     string   `json:"platform"`
	LeadsCur     int64    `json:"leads_cur"`
	LeadsPrev    int64    `json:"leads_prev"`
	ShareCurPct  *float64 `json:"share_cur_pct"`
	SharePrevPct *float64 `json:"share_prev_pct"`
	ShareDiffPP  *float64 `json:"share_diff_pp"`
}

// UTMSourceRow is the per-UTM-source aggregate.
type UTMSourceRow struct {
	Platform  string   `json:"platform"`
	UTMSource string   `json:"utm_source"`
	Leads     int64    `json:"leads"`
	Contracts int64    `json:"n_contracts"`
	Revenue   float64  `json:"revenue"`
	Spend     float64  `json:"spend"`
	CPL       *float64 `json:"cpl"`
	CVR       *float64 `json:"cvr"`
}

// Classifier actions form a closed set.
const (
	ActionScale = "scale"
	ActionPause = "pause"
	ActionWatch = "watch"
)

// MoverRow is a compared campaign with its classifier verdict.
type MoverRow struct {
	CampaignCompareRow
	Action string `json:"action"`
}

// PaidSplitRow separates paid from organic lead volume per entity.
type PaidSplitRow struct {
	Entity       string   `json:"entity"`
	PaidLeads    int64    `json:"paid_leads"`
	OrganicLeads int64    `json:"organic_leads"`
	TotalLeads   int64    `json:"total_leads"`
	PaidSharePct *float64 `json:"paid_share_pct"`
}

// FunnelRow is one day of the impression -> contract funnel.
type FunnelRow struct {
	Date         string   `json:"dt"`
	Platform     string   `json:"platform"`
	Impressions  int64    `json:"impressions"`
	Clicks       int64    `json:"clicks"`
	Leads        int64    `json:"leads"`
	Contracts    int64    `json:"contracts"`
	Revenue      float64  `json:"revenue"`
	CTR          *float64 `json:"ctr"`
	CVR          *float64 `json:"cvr"`
	ContractRate *float64 `json:"contract_rate"`
}

// ProductRow is the per-product revenue aggregate.
type ProductRow struct {
	Product          string   `json:"product"`
	Leads            int64    `json:"leads"`
	Contracts        int64    `json:"contracts"`
	Revenue          float64  `json:"revenue"`
	AvgContractValue *float64 `json:"avg_contract_value"`
}

// CoverageRow is one day of attribution coverage.
type CoverageRow struct {
	Date               string   `json:"dt"`
	TotalLeads         int64    `json:"total_leads"`
	TotalContracts     int64    `json:"total_contracts"`
	WithMetaCampaign   int64    `json:"with_meta_campaign"`
	WithGoogleCampaign int64    `json:"with_google_campaign"`
	WithUTM            int64    `json:"with_utm"`
	PctMetaCampaign    *float64 `json:"pct_meta_campaign"`
	PctGoogleCampaign  *float64 `json:"pct_google_campaign"`
	PctUTM             *float64 `json:"pct_utm"`
}

// AttributionGroupRow is one attribution bucket of the summary.
type AttributionGroupRow struct {
	AttributionType  string   `json:"attribution_type"`
	TotalLeads       int64    `json:"total_leads"`
	Contracts        int64    `json:"contracts"`
	TotalRevenue     float64  `json:"total_revenue"`
	AvgContractValue *float64 `json:"avg_contract_value"`
	ConversionRate   *float64 `json:"conversion_rate"`
}

// TimelinePoint is one period of the contracts timeline
// (group_by day/week/month).
type TimelinePoint struct {
	Period           string   `json:"period"`
	Contracts        int64    `json:"contracts"`
	Revenue          float64  `json:"revenue"`
	AvgContractValue *float64 `json:"avg_contract_value"`
}

// ContractsBreakdownRow is a contracts split by platform or by source.
type ContractsBreakdownRow struct {
	Key              string   `json:"key"`
	Contracts        int64    `json:"contracts"`
	Revenue          float64  `json:"revenue"`
	AvgContractValue *float64 `json:"avg_contract_value"`
}

// Insight labels form a closed set; rules apply top to bottom, first match
// wins.
const (
	LabelHighPerformer   = "high_performer"
	LabelMediumPerformer = "medium_performer"
	LabelVolumeDriver    = "volume_driver"
	LabelNeedsAttention  = "needs_attention"
)

// InsightRow is a campaign with its qualitative performance label.
type InsightRow struct {
	Platform       string   `json:"platform"`
	CampaignID     string   `json:"campaign_id"`
	CampaignName   string   `json:"campaign_name"`
	Leads          int64    `json:"leads"`
	Contracts      int64    `json:"contracts"`
	Revenue        float64  `json:"revenue"`
	Spend          float64  `json:"spend"`
	ConversionRate *float64 `json:"conversion_rate"`
	Label          string   `json:"label"`
}

// MetricsTrendPoint is one day of the full derived-metric trend.
type MetricsTrendPoint struct {
	Date        string   `json:"dt"`
	Leads       int64    `json:"leads"`
	Clicks      int64    `json:"clicks"`
	Impressions int64    `json:"impressions"`
	Spend       float64  `json:"spend"`
	CPL         *float64 `json:"cpl"`
	CPC         *float64 `json:"cpc"`
	CTR         *float64 `json:"ctr"`
	CPM         *float64 `json:"cpm"`
}

// CreativeRow is the lifetime aggregate of one ad creative.
type CreativeRow struct {
	CreativeID        string   `json:"creative_id"`
	CampaignID        string   `json:"campaign_id"`
	Title             string   `json:"title"`
	Body              string   `json:"body"`
	CTAType           string   `json:"cta_type"`
	LinkURL           string   `json:"link_url"`
	TotalSpend        float64  `json:"total_spend"`
	TotalImpressions  int64    `json:"total_impressions"`
	TotalClicks       int64    `json:"total_clicks"`
	Leads             int64    `json:"leads"`
	Contracts         int64    `json:"contracts"`
	Revenue           float64  `json:"revenue"`
	FirstSeen         string   `json:"first_seen"`
	LastSeen          string   `json:"last_seen"`
	DaysActive        int64    `json:"days_active"`
	PerformanceStatus string   `json:"performance_status"`
	CPL               *float64 `json:"cpl"`
	CTR               *float64 `json:"ctr"`
	ROAS              *float64 `json:"roas"`
}
