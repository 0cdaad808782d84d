package analytics

import "sort"

// ClassifyMover assigns a compared campaign to scale, pause or watch. The
// category is total: every row maps to exactly one.
//
// Rules, in order:
//  1. scale  — enough spend and leads, non-negative lead momentum, and
//     either ROAS at target or CPL at target (when a CPL target is set).
//  2. pause  — enough spend but no leads, or ROAS below the kill line
//     (unknown ROAS counts as below).
//  3. watch  — everything else.
func ClassifyMover(row CampaignCompareRow, t Thresholds) string {
	roas, hasROAS := deref(row.ROASCur)
	cpl, hasCPL := deref(row.CPLCur)

	if row.SpendCur >= t.MinSpend && float64(row.LeadsCur) >= t.MinLeads && row.LeadsDiff >= 0 {
		roasOK := hasROAS && roas >= t.TargetROAS
		cplOK := t.TargetCPL > 0 && hasCPL && cpl <= t.TargetCPL
		if roasOK || cplOK {
			return ActionScale
		}
	}

	if row.SpendCur >= t.MinSpend {
		if row.LeadsCur == 0 || !hasROAS || roas < t.KillROAS {
			return ActionPause
		}
	}

	return ActionWatch
}

// actionRank orders scale before watch before pause in final output.
var actionRank = map[string]int{
	ActionScale: 0,
	ActionWatch: 1,
	ActionPause: 2,
}

// SortMovers applies the output ordering: action bucket, then ROAS
// descending with nulls last, then current leads descending, then key.
func SortMovers(rows []MoverRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if actionRank[a.Action] != actionRank[b.Action] {
			return actionRank[a.Action] < actionRank[b.Action]
		}
		ar, aok := deref(a.ROASCur)
		br, bok := deref(b.ROASCur)
		if aok != bok {
			return aok // non-null before null
		}
		if aok && ar != br {
			return ar > br
		}
		if a.LeadsCur != b.LeadsCur {
			return a.LeadsCur > b.LeadsCur
		}
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		}
		return a.CampaignID < b.CampaignID
	})
}

// LabelInsights assigns each campaign its qualitative label. Rules apply
// top to bottom; the first match wins:
//
//	high_performer   — has contracts and revenue in the top decile
//	medium_performer — conversion rate at or above 5%
//	volume_driver    — at least 50 leads
//	needs_attention  — everything else
//
// The top-decile revenue threshold is computed over the given row set.
func LabelInsights(rows []InsightRow) {
	threshold := revenueTopDecile(rows)
	for i := range rows {
		r := &rows[i]
		r.ConversionRate = CVR(float64(r.Contracts), float64(r.Leads))
		switch {
		case r.Contracts > 0 && r.Revenue >= threshold && threshold > 0:
			r.Label = LabelHighPerformer
		case r.ConversionRate != nil && *r.ConversionRate >= 5:
			r.Label = LabelMediumPerformer
		case r.Leads >= 50:
			r.Label = LabelVolumeDriver
		default:
			r.Label = LabelNeedsAttention
		}
	}
}

// revenueTopDecile returns the smallest revenue still inside the top 10% of
// rows by revenue. With fewer than ten rows the maximum qualifies alone.
func revenueTopDecile(rows []InsightRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	revs := make([]float64, len(rows))
	for i, r := range rows {
		revs[i] = r.Revenue
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(revs)))
	count := len(revs) / 10
	if count < 1 {
		count = 1
	}
	return revs[count-1]
}
