package analytics

import (
	"math"
	"sort"

	"github.com/adlytics/funnel-api/internal/config"
)

// BaselineStats is a campaign's trailing-window profile: mean and stddev of
// daily CPL over days that produced leads, plus mean daily leads and spend.
type BaselineStats struct {
	Platform     string
	CampaignID   string
	CampaignName string
	CPLDays      int
	AvgCPL       *float64
	StddevCPL    float64
	AvgLeads     float64
	AvgSpend     float64
}

// CurrentStats is a campaign's current-window aggregate as seen by the
// detector.
type CurrentStats struct {
	Platform      string
	CampaignID    string
	CampaignName  string
	AvgDailyLeads float64
	Spend         float64
	CPL           *float64
}

// DetectAnomalies classifies each current campaign against its baseline.
// First matching rule wins:
//
//	spike_cpl   — CPL above mean + spikeSigma*stddev (high above highSigma)
//	drop_leads  — daily leads below dropRatio*mean (high below highDropRatio)
//	spike_spend — spend above surgeFactor * expected spend (mean leads * mean CPL)
//
// Campaigns without enough baseline days, and campaigns matching no rule,
// are filtered out. Output is sorted by severity, then relative CPL
// deviation descending, then key; capped to limit when limit > 0.
func DetectAnomalies(cur []CurrentStats, baselines []BaselineStats, cfg config.AnomalyConfig, windowDays int, limit int) []AnomalyRow {
	byKey := make(map[campaignKey]BaselineStats, len(baselines))
	for _, b := range baselines {
		byKey[campaignKey{b.Platform, b.CampaignID}] = b
	}

	var out []AnomalyRow
	for _, c := range cur {
		b, ok := byKey[campaignKey{c.Platform, c.CampaignID}]
		if !ok || b.CPLDays < cfg.MinBaselineDays || b.AvgCPL == nil {
			continue
		}
		row, flagged := classifyAnomaly(c, b, cfg, windowDays)
		if flagged {
			out = append(out, row)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if severityRank(out[i].Severity) != severityRank(out[j].Severity) {
			return severityRank(out[i].Severity) < severityRank(out[j].Severity)
		}
		di := cplDeviation(out[i])
		dj := cplDeviation(out[j])
		if di != dj {
			return di > dj
		}
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].CampaignID < out[j].CampaignID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func classifyAnomaly(c CurrentStats, b BaselineStats, cfg config.AnomalyConfig, windowDays int) (AnomalyRow, bool) {
	avgCPL := *b.AvgCPL
	row := AnomalyRow{
		Platform:      c.Platform,
		CampaignID:    c.CampaignID,
		CampaignName:  c.CampaignName,
		CurrentCPL:    c.CPL,
		BaselineCPL:   b.AvgCPL,
		CurrentLeads:  c.AvgDailyLeads,
		BaselineLeads: b.AvgLeads,
		CurrentSpend:  c.Spend,
		BaselineSpend: b.AvgSpend,
	}
	if avgCPL > 0 {
		if cpl, ok := deref(c.CPL); ok {
			row.DeviationPct = fptr((cpl - avgCPL) * 100 / avgCPL)
		}
	}

	if cpl, ok := deref(c.CPL); ok && cpl > avgCPL+cfg.SpikeSigma*b.StddevCPL {
		row.AnomalyType = AnomalySpikeCPL
		row.Severity = SeverityMedium
		if cpl > avgCPL+cfg.HighSigma*b.StddevCPL {
			row.Severity = SeverityHigh
		}
		return row, true
	}

	if b.AvgLeads > 0 && c.AvgDailyLeads < cfg.DropRatio*b.AvgLeads {
		row.AnomalyType = AnomalyDropLeads
		row.Severity = SeverityMedium
		if c.AvgDailyLeads < cfg.HighDropRatio*b.AvgLeads {
			row.Severity = SeverityHigh
		}
		return row, true
	}

	// Expected window spend is the baseline daily volume priced at the
	// baseline CPL, scaled to the window length.
	expected := b.AvgLeads * avgCPL * float64(windowDays)
	if expected > 0 && c.Spend > cfg.SpendSurgeFactor*expected {
		row.AnomalyType = AnomalySpikeSpend
		row.Severity = SeverityLow
		return row, true
	}

	return row, false
}

func severityRank(s string) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// cplDeviation is |cpl_cur - avg_cpl| / avg_cpl, the secondary sort key.
func cplDeviation(r AnomalyRow) float64 {
	base, ok := deref(r.BaselineCPL)
	if !ok || base == 0 {
		return 0
	}
	cur, ok := deref(r.CurrentCPL)
	if !ok {
		return 0
	}
	return math.Abs(cur-base) / base
}
