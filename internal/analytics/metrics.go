package analytics

// Derived-ratio rules, applied identically in SQL (NULLIF) and here: a zero
// denominator yields nil, never zero, never NaN, never an error.

func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num / den
	return &v
}

func pct(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num * 100 / den
	return &v
}

func perMille(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	v := num * 1000 / den
	return &v
}

// CPL is cost per lead: spend / leads.
func CPL(spend, leads float64) *float64 { return ratio(spend, leads) }

// CPC is cost per click: spend / clicks.
func CPC(spend, clicks float64) *float64 { return ratio(spend, clicks) }

// CTR is the click-through rate: clicks * 100 / impressions.
func CTR(clicks, impressions float64) *float64 { return pct(clicks, impressions) }

// CPM is spend per thousand impressions.
func CPM(spend, impressions float64) *float64 { return perMille(spend, impressions) }

// ROAS is return on ad spend: revenue / spend.
func ROAS(revenue, spend float64) *float64 { return ratio(revenue, spend) }

// CVR is the lead-to-contract conversion rate: contracts * 100 / leads.
func CVR(contracts, leads float64) *float64 { return pct(contracts, leads) }

// ClickToLead is leads * 100 / clicks.
func ClickToLead(leads, clicks float64) *float64 { return pct(leads, clicks) }

// AvgContractValue is revenue / contracts.
func AvgContractValue(revenue, contracts float64) *float64 { return ratio(revenue, contracts) }

// PctDiff is the relative delta (cur - prev) * 100 / prev. It is nil when
// prev is zero: both the no-change case (cur also zero) and the new-entity
// sentinel (cur > 0) carry no meaningful relative delta.
func PctDiff(cur, prev float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := (cur - prev) * 100 / prev
	return &v
}

func fptr(v float64) *float64 { return &v }

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
