package analytics

import "sort"

// campaignKey identifies a campaign across windows. campaign_name rides
// along for display but is not part of the identity.
type campaignKey struct {
	Platform   string
	CampaignID string
}

// JoinCampaigns full-outer-joins current and previous window aggregates by
// campaign key. A side missing for a key contributes zero sums and nil
// ratios; the row is flagged is_new / is_lost accordingly.
func JoinCampaigns(cur, prev []CampaignRow) []CampaignCompareRow {
	type pair struct {
		cur  *CampaignRow
		prev *CampaignRow
		name string
	}
	joined := make(map[campaignKey]*pair, len(cur)+len(prev))
	order := make([]campaignKey, 0, len(cur)+len(prev))

	for i := range cur {
		k := campaignKey{cur[i].Platform, cur[i].CampaignID}
		joined[k] = &pair{cur: &cur[i], name: cur[i].CampaignName}
		order = append(order, k)
	}
	for i := range prev {
		k := campaignKey{prev[i].Platform, prev[i].CampaignID}
		if p, ok := joined[k]; ok {
			p.prev = &prev[i]
			continue
		}
		joined[k] = &pair{prev: &prev[i], name: prev[i].CampaignName}
		order = append(order, k)
	}

	out := make([]CampaignCompareRow, 0, len(order))
	for _, k := range order {
		p := joined[k]
		row := CampaignCompareRow{
			Platform:     k.Platform,
			CampaignID:   k.CampaignID,
			CampaignName: p.name,
			IsNew:        p.prev == nil,
			IsLost:       p.cur == nil,
		}
		if p.cur != nil {
			row.LeadsCur = p.cur.Leads
			row.SpendCur = p.cur.Spend
			row.RevenueCur = p.cur.Revenue
			row.CPLCur = CPL(p.cur.Spend, float64(p.cur.Leads))
			row.ROASCur = ROAS(p.cur.Revenue, p.cur.Spend)
		}
		if p.prev != nil {
			row.LeadsPrev = p.prev.Leads
			row.SpendPrev = p.prev.Spend
			row.RevenuePrev = p.prev.Revenue
			row.CPLPrev = CPL(p.prev.Spend, float64(p.prev.Leads))
			row.ROASPrev = ROAS(p.prev.Revenue, p.prev.Spend)
		}
		row.LeadsDiff = row.LeadsCur - row.LeadsPrev
		row.LeadsDiffPct = PctDiff(float64(row.LeadsCur), float64(row.LeadsPrev))
		row.SpendDiff = row.SpendCur - row.SpendPrev
		row.SpendDiffPct = PctDiff(row.SpendCur, row.SpendPrev)
		out = append(out, row)
	}

	// Default compare ordering: current spend descending, key-stable.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SpendCur != out[j].SpendCur {
			return out[i].SpendCur > out[j].SpendCur
		}
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].CampaignID < out[j].CampaignID
	})
	return out
}

// AlignTrendCompare joins the current window's daily values with the
// previous window's, shifted forward by the window length so both series
// share the current calendar. Every day of the current window emits a row;
// missing values become zero.
func AlignTrendCompare(cur Window, prev Window, curVals, prevVals map[string]float64) []TrendComparePoint {
	shift := cur.Days()
	out := make([]TrendComparePoint, 0, shift)
	for d := cur.From; !d.After(cur.To); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		prevKey := d.AddDate(0, 0, -shift).Format(dateLayout)
		var prevVal float64
		// Only previous-window dates contribute; a custom prev window
		// shorter than the current one pads with zero.
		if pd := d.AddDate(0, 0, -shift); !pd.Before(prev.From) && !pd.After(prev.To) {
			prevVal = prevVals[prevKey]
		}
		out = append(out, TrendComparePoint{
			Date:      key,
			Cur:       curVals[key],
			PrevShift: prevVal,
		})
	}
	return out
}

// CompareShares joins current and previous platform lead counts and derives
// share percentages plus the percentage-point delta. Shares are relative to
// each window's own total; a window with zero total yields nil shares.
func CompareShares(cur, prev []ShareRow) []ShareCompareRow {
	var curTotal, prevTotal int64
	for _, r := range cur {
		curTotal += r.Leads
	}
	for _, r := range prev {
		prevTotal += r.Leads
	}

	prevByPlatform := make(map[string]int64, len(prev))
	for _, r := range prev {
		prevByPlatform[r.Platform] = r.Leads
	}

	seen := make(map[string]struct{}, len(cur))
	out := make([]ShareCompareRow, 0, len(cur)+len(prev))
	for _, r := range cur {
		seen[r.Platform] = struct{}{}
		out = append(out, shareCompareRow(r.Platform, r.Leads, prevByPlatform[r.Platform], curTotal, prevTotal))
	}
	for _, r := range prev {
		if _, ok := seen[r.Platform]; ok {
			continue
		}
		out = append(out, shareCompareRow(r.Platform, 0, r.Leads, curTotal, prevTotal))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LeadsCur != out[j].LeadsCur {
			return out[i].LeadsCur > out[j].LeadsCur
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

func shareCompareRow(platform string, leadsCur, leadsPrev, curTotal, prevTotal int64) ShareCompareRow {
	row := ShareCompareRow{
		Platform:     platform,
		LeadsCur:     leadsCur,
		LeadsPrev:    leadsPrev,
		ShareCurPct:  pct(float64(leadsCur), float64(curTotal)),
		SharePrevPct: pct(float64(leadsPrev), float64(prevTotal)),
	}
	if cur, ok := deref(row.ShareCurPct); ok {
		if prev, ok := deref(row.SharePrevPct); ok {
			row.ShareDiffPP = fptr(cur - prev)
		}
	}
	return row
}
