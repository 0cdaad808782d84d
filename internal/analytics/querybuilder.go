package analytics

import (
	"fmt"
	"strings"

	"github.com/adlytics/funnel-api/internal/warehouse"
	"github.com/lib/pq"
)

// Warehouse views the query layer reads from. The set is fixed; nothing
// else is ever queried.
const (
	viewPlatformDaily       = "v5_bi_platform_daily"
	viewLeadsCampaignDaily  = "v5_leads_campaign_daily"
	viewLeadsSourceDaily    = "v5_leads_source_daily_vw"
	viewCampaignROIDaily    = "v6_campaign_roi_daily"
	viewFunnelDaily         = "v6_funnel_daily"
	viewProductPerformance  = "v6_product_performance"
	viewAttributionCoverage = "v6_attribution_coverage"
	viewCreativePerformance = "v6_creative_performance"
	viewContractsAttributed = "v7_contracts_with_attribution"
	viewCampaignsDailyFull  = "v8_campaigns_daily_full"
	viewPlatformDailyFull   = "v8_platform_daily_full"
	viewAttributionSummary  = "v8_attribution_summary"
	viewFactLeads           = "fact_leads"
)

// timelineGranularities is the allow-list for the contracts-timeline
// group_by parameter. Values are date_trunc units, never user input.
var timelineGranularities = map[string]string{
	"day":   "day",
	"week":  "week",
	"month": "month",
}

// QueryBuilder composes parameterized SQL for the endpoint families. All
// entity-level values are bind parameters; the only interpolated fragments
// come from fixed allow-lists (view names, sort columns, date_trunc units).
type QueryBuilder struct {
	dialect warehouse.Dialect
}

// NewQueryBuilder creates a builder for the given warehouse dialect.
func NewQueryBuilder(dialect warehouse.Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// fragment accumulates a query's bind arguments, emitting driver-correct
// placeholders ($n for postgres, ? for snowflake).
type fragment struct {
	dialect warehouse.Dialect
	args    []interface{}
	n       int
}

func (qb *QueryBuilder) frag() *fragment {
	return &fragment{dialect: qb.dialect}
}

func (f *fragment) arg(v interface{}) string {
	f.args = append(f.args, v)
	f.n++
	if f.dialect == warehouse.DialectSnowflake {
		return "?"
	}
	return fmt.Sprintf("$%d", f.n)
}

// windowFilter binds the inclusive [from, to] date bounds.
func (f *fragment) windowFilter(w Window) string {
	return fmt.Sprintf("dt >= %s AND dt <= %s", f.arg(w.FromStr()), f.arg(w.ToStr()))
}

// platformFilter binds the platform list. Postgres binds the whole list as
// an array parameter; snowflake binds each member.
func (f *fragment) platformFilter(platforms []string) string {
	if len(platforms) == 0 {
		return ""
	}
	if f.dialect == warehouse.DialectSnowflake {
		ph := make([]string, len(platforms))
		for i, p := range platforms {
			ph[i] = f.arg(p)
		}
		return " AND platform IN (" + strings.Join(ph, ", ") + ")"
	}
	return " AND platform = ANY(" + f.arg(pq.Array(platforms)) + ")"
}

// KPI aggregates the window into a single card. CPL and ROAS are derived in
// SQL with NULLIF so a zero denominator scans as NULL.
func (qb *QueryBuilder) KPI(w Window, platforms []string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT COALESCE(SUM(leads), 0) AS leads,
		       COALESCE(SUM(n_contracts), 0) AS n_contracts,
		       COALESCE(SUM(revenue), 0) AS revenue,
		       COALESCE(SUM(spend), 0) AS spend,
		       SUM(spend) / NULLIF(SUM(leads), 0) AS cpl,
		       SUM(revenue) / NULLIF(SUM(spend), 0) AS roas
		FROM ` + viewPlatformDailyFull + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms)
	return q, f.args
}

// trendMetrics is the allow-list for single-metric trends.
var trendMetrics = map[string]string{
	"leads": "leads",
	"spend": "spend",
}

// Trend sums one metric per day, dense rows only (missing days omitted).
func (qb *QueryBuilder) Trend(w Window, platforms []string, metric string) (string, []interface{}) {
	col, ok := trendMetrics[metric]
	if !ok {
		col = "leads"
	}
	f := qb.frag()
	q := `
		SELECT dt, COALESCE(SUM(` + col + `), 0) AS value
		FROM ` + viewPlatformDaily + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
		GROUP BY dt
		ORDER BY dt ASC`
	return q, f.args
}

// CampaignsWindow aggregates campaigns over one window. The same function
// emits both sides of a compare query so the shapes cannot drift.
func (qb *QueryBuilder) CampaignsWindow(w Window, platforms []string, minSpend float64) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT platform, campaign_id, campaign_name,
		       COALESCE(SUM(leads), 0) AS leads,
		       COALESCE(SUM(n_contracts), 0) AS n_contracts,
		       COALESCE(SUM(revenue), 0) AS revenue,
		       COALESCE(SUM(spend), 0) AS spend
		FROM ` + viewCampaignsDailyFull + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
		GROUP BY platform, campaign_id, campaign_name
		HAVING COALESCE(SUM(spend), 0) >= ` + f.arg(minSpend) + `
		ORDER BY leads DESC, platform ASC, campaign_id ASC`
	return q, f.args
}

// Scatter selects per-campaign CPL/ROAS/spend bubbles above the volume
// floors, biggest spenders first, capped to 50 in the shaper.
func (qb *QueryBuilder) Scatter(w Window, platforms []string, minLeads, minSpend float64) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT platform, campaign_id, campaign_name,
		       COALESCE(SUM(leads), 0) AS leads,
		       COALESCE(SUM(spend), 0) AS spend,
		       COALESCE(SUM(revenue), 0) AS revenue
		FROM ` + viewCampaignsDailyFull + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
		GROUP BY platform, campaign_id, campaign_name
		HAVING COALESCE(SUM(leads), 0) >= ` + f.arg(minLeads) + `
		   AND COALESCE(SUM(spend), 0) >= ` + f.arg(minSpend) + `
		ORDER BY spend DESC, platform ASC, campaign_id ASC`
	return q, f.args
}

// PlatformLeads sums leads per platform for share calculations.
func (qb *QueryBuilder) PlatformLeads(w Window, platforms []string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT platform, COALESCE(SUM(leads), 0) AS leads
		FROM ` + viewPlatformDaily + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
		GROUP BY platform
		ORDER BY leads DESC, platform ASC`
	return q, f.args
}

// UTMSources aggregates per (platform, utm_source).
func (qb *QueryBuilder) UTMSources(w Window, platforms []string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT platform, utm_source,
		       COALESCE(SUM(leads), 0) AS leads,
		       COALESCE(SUM(n_contracts), 0) AS n_contracts,
		       COALESCE(SUM(revenue), 0) AS revenue,
		       COALESCE(SUM(spend), 0) AS spend
		FROM ` + viewLeadsSourceDaily + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
		GROUP BY platform, utm_source
		ORDER BY leads DESC, platform ASC, utm_source ASC`
	return q, f.args
}

// AnomalyBaseline computes per-campaign baseline statistics over the
// trailing window: mean and stddev of daily CPL (days with leads only),
// mean daily leads and spend, and the count of eligible baseline days.
func (qb *QueryBuilder) AnomalyBaseline(w Window, platforms []string) (string, []interface{}) {
	f := qb.frag()
	q := `
		WITH daily AS (
			SELECT platform, campaign_id, campaign_name, dt,
			       SUM(leads) AS leads,
			       SUM(spend) AS spend,
			       SUM(spend) / NULLIF(SUM(leads), 0) AS cpl
			FROM ` + viewCampaignsDailyFull + `
			WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
			GROUP BY platform, campaign_id, campaign_name, dt
		)
		SELECT platform, campaign_id, campaign_name,
		       COUNT(cpl) AS cpl_days,
		       AVG(cpl) AS avg_cpl,
		       COALESCE(STDDEV_SAMP(cpl), 0) AS stddev_cpl,
		       COALESCE(AVG(leads), 0) AS avg_leads,
		       COALESCE(AVG(spend), 0) AS avg_spend
		FROM daily
		GROUP BY platform, campaign_id, campaign_name
		ORDER BY platform ASC, campaign_id ASC`
	return q, f.args
}

// AnomalyCurrent aggregates the current window per campaign for the
// detector: total spend, daily-average leads and the window CPL.
func (qb *QueryBuilder) AnomalyCurrent(w Window, platforms []string) (string, []interface{}) {
	f := qb.frag()
	days := f.arg(float64(w.Days()))
	q := `
		SELECT platform, campaign_id, campaign_name,
		       COALESCE(SUM(leads), 0) / ` + days + ` AS avg_daily_leads,
		       COALESCE(SUM(spend), 0) AS spend,
		       SUM(spend) / NULLIF(SUM(leads), 0) AS cpl
		FROM ` + viewCampaignsDailyFull + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
		GROUP BY platform, campaign_id, campaign_name
		ORDER BY platform ASC, campaign_id ASC`
	return q, f.args
}

// FunnelDaily selects the daily funnel rows, optionally for one platform.
func (qb *QueryBuilder) FunnelDaily(w Window, platform string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT dt, platform,
		       COALESCE(impressions, 0), COALESCE(clicks, 0), COALESCE(leads, 0),
		       COALESCE(contracts, 0), COALESCE(revenue, 0)
		FROM ` + viewFunnelDaily + `
		WHERE ` + f.windowFilter(w)
	if platform != "" {
		q += ` AND platform = ` + f.arg(platform)
	}
	q += `
		ORDER BY dt ASC, platform ASC`
	return q, f.args
}

// Products aggregates per-product performance, top revenue first.
func (qb *QueryBuilder) Products(w Window) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT product,
		       COALESCE(SUM(leads), 0) AS leads,
		       COALESCE(SUM(contracts), 0) AS contracts,
		       COALESCE(SUM(revenue), 0) AS revenue
		FROM ` + viewProductPerformance + `
		WHERE ` + f.windowFilter(w) + `
		GROUP BY product
		ORDER BY revenue DESC, product ASC`
	return q, f.args
}

// AttributionCoverage selects the daily coverage rows.
func (qb *QueryBuilder) AttributionCoverage(w Window) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT dt, COALESCE(total_leads, 0), COALESCE(total_contracts, 0),
		       COALESCE(with_meta_campaign, 0), COALESCE(with_google_campaign, 0),
		       COALESCE(with_utm, 0)
		FROM ` + viewAttributionCoverage + `
		WHERE ` + f.windowFilter(w) + `
		ORDER BY dt ASC`
	return q, f.args
}

// AttributionSummary groups contracts by attribution type.
func (qb *QueryBuilder) AttributionSummary(w Window) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT attribution_type,
		       COALESCE(SUM(total_leads), 0) AS total_leads,
		       COALESCE(SUM(contracts), 0) AS contracts,
		       COALESCE(SUM(total_revenue), 0) AS total_revenue
		FROM ` + viewAttributionSummary + `
		WHERE ` + f.windowFilter(w) + `
		GROUP BY attribution_type
		ORDER BY total_revenue DESC, attribution_type ASC`
	return q, f.args
}

// ContractsTimeline buckets contracts by the allow-listed granularity.
func (qb *QueryBuilder) ContractsTimeline(w Window, groupBy string) (string, []interface{}) {
	unit, ok := timelineGranularities[groupBy]
	if !ok {
		unit = "day"
	}
	f := qb.frag()
	q := `
		SELECT DATE_TRUNC('` + unit + `', dt) AS period,
		       COUNT(*) AS contracts,
		       COALESCE(SUM(contract_amount), 0) AS revenue
		FROM ` + viewContractsAttributed + `
		WHERE ` + f.windowFilter(w) + `
		GROUP BY DATE_TRUNC('` + unit + `', dt)
		ORDER BY period ASC`
	return q, f.args
}

// ContractsByPlatform splits contracts by dominant platform.
func (qb *QueryBuilder) ContractsByPlatform(w Window) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT COALESCE(platform, 'other') AS platform,
		       COUNT(*) AS contracts,
		       COALESCE(SUM(contract_amount), 0) AS revenue
		FROM ` + viewContractsAttributed + `
		WHERE ` + f.windowFilter(w) + `
		GROUP BY platform
		ORDER BY revenue DESC, platform ASC`
	return q, f.args
}

// ContractsBySource splits contracts by utm_source, optionally filtered to
// one platform.
func (qb *QueryBuilder) ContractsBySource(w Window, platform string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT COALESCE(utm_source, '') AS utm_source,
		       COUNT(*) AS contracts,
		       COALESCE(SUM(contract_amount), 0) AS revenue
		FROM ` + viewContractsAttributed + `
		WHERE ` + f.windowFilter(w)
	if platform != "" {
		q += ` AND platform = ` + f.arg(platform)
	}
	q += `
		GROUP BY utm_source
		ORDER BY revenue DESC, utm_source ASC`
	return q, f.args
}

// PaidSplitPlatforms splits lead volume into paid and organic per platform.
func (qb *QueryBuilder) PaidSplitPlatforms(w Window) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT COALESCE(dominant_platform, 'other') AS platform,
		       SUM(CASE WHEN is_paid THEN 1 ELSE 0 END) AS paid_leads,
		       SUM(CASE WHEN is_paid THEN 0 ELSE 1 END) AS organic_leads
		FROM ` + viewFactLeads + `
		WHERE created_date >= ` + f.arg(w.FromStr()) + ` AND created_date <= ` + f.arg(w.ToStr()) + `
		GROUP BY dominant_platform
		ORDER BY paid_leads + organic_leads DESC, platform ASC`
	return q, f.args
}

// PaidSplitCampaigns splits lead volume into paid and organic per attributed
// campaign, optionally filtered to one platform. Leads without a campaign
// bucket as 'unattributed'.
func (qb *QueryBuilder) PaidSplitCampaigns(w Window, platform string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT COALESCE(NULLIF(meta_campaign, ''), NULLIF(google_campaign, ''), 'unattributed') AS campaign_name,
		       SUM(CASE WHEN is_paid THEN 1 ELSE 0 END) AS paid_leads,
		       SUM(CASE WHEN is_paid THEN 0 ELSE 1 END) AS organic_leads
		FROM ` + viewFactLeads + `
		WHERE created_date >= ` + f.arg(w.FromStr()) + ` AND created_date <= ` + f.arg(w.ToStr())
	if platform != "" {
		q += ` AND dominant_platform = ` + f.arg(platform)
	}
	q += `
		GROUP BY 1
		ORDER BY paid_leads + organic_leads DESC, campaign_name ASC`
	return q, f.args
}

// InsightRows selects campaign aggregates for the qualitative classifier.
func (qb *QueryBuilder) InsightRows(w Window) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT platform, campaign_id, campaign_name,
		       COALESCE(SUM(leads), 0) AS leads,
		       COALESCE(SUM(contracts), 0) AS contracts,
		       COALESCE(SUM(revenue), 0) AS revenue,
		       COALESCE(SUM(spend), 0) AS spend
		FROM ` + viewCampaignROIDaily + `
		WHERE ` + f.windowFilter(w) + `
		GROUP BY platform, campaign_id, campaign_name
		ORDER BY revenue DESC, platform ASC, campaign_id ASC`
	return q, f.args
}

// MetricsTrend selects the daily volumes that feed the derived-metric
// trend; ratios are computed in the metrics engine.
func (qb *QueryBuilder) MetricsTrend(w Window, platforms []string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT dt,
		       COALESCE(SUM(leads), 0) AS leads,
		       COALESCE(SUM(clicks), 0) AS clicks,
		       COALESCE(SUM(impressions), 0) AS impressions,
		       COALESCE(SUM(spend), 0) AS spend
		FROM ` + viewPlatformDaily + `
		WHERE ` + f.windowFilter(w) + f.platformFilter(platforms) + `
		GROUP BY dt
		ORDER BY dt ASC`
	return q, f.args
}

// Creatives selects lifetime creative aggregates overlapping the window,
// biggest spenders first.
func (qb *QueryBuilder) Creatives(w Window, platforms []string, limit int) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT creative_id, campaign_id, title, body, cta_type, link_url,
		       COALESCE(total_spend, 0), COALESCE(total_impressions, 0),
		       COALESCE(total_clicks, 0), COALESCE(leads, 0), COALESCE(contracts, 0),
		       COALESCE(revenue, 0), first_seen, last_seen,
		       COALESCE(days_active, 0), COALESCE(performance_status, '')
		FROM ` + viewCreativePerformance + `
		WHERE last_seen >= ` + f.arg(w.FromStr()) + ` AND first_seen <= ` + f.arg(w.ToStr()) +
		f.platformFilter(platforms) + `
		ORDER BY total_spend DESC, creative_id ASC
		LIMIT ` + f.arg(limit)
	return q, f.args
}

// CreativesByCampaign selects the creatives of one campaign in the window.
func (qb *QueryBuilder) CreativesByCampaign(w Window, campaignID string) (string, []interface{}) {
	f := qb.frag()
	q := `
		SELECT creative_id, campaign_id, title, body, cta_type, link_url,
		       COALESCE(total_spend, 0), COALESCE(total_impressions, 0),
		       COALESCE(total_clicks, 0), COALESCE(leads, 0), COALESCE(contracts, 0),
		       COALESCE(revenue, 0), first_seen, last_seen,
		       COALESCE(days_active, 0), COALESCE(performance_status, '')
		FROM ` + viewCreativePerformance + `
		WHERE campaign_id = ` + f.arg(campaignID) + `
		  AND last_seen >= ` + f.arg(w.FromStr()) + ` AND first_seen <= ` + f.arg(w.ToStr()) + `
		ORDER BY total_spend DESC, creative_id ASC`
	return q, f.args
}
