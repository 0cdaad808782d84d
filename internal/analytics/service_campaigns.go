package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adlytics/funnel-api/internal/warehouse"
)

// campaignsWindow fetches per-campaign aggregates for one window. Shared by
// the list endpoint and both sides of every campaign compare.
func (s *Service) campaignsWindow(ctx context.Context, w Window, platforms []string, minSpend float64) ([]CampaignRow, error) {
	query, args := s.qb.CampaignsWindow(w, platforms, minSpend)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CampaignRow
	for rows.Next() {
		var r CampaignRow
		if err := rows.Scan(&r.Platform, &r.CampaignID, &r.CampaignName,
			&r.Leads, &r.Contracts, &r.Revenue, &r.Spend); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", warehouse.ScanErr(err))
		}
		r.CPL = CPL(r.Spend, float64(r.Leads))
		r.ROAS = ROAS(r.Revenue, r.Spend)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return out, nil
}

// Campaigns lists campaign aggregates above the spend floor, most leads
// first.
func (s *Service) Campaigns(ctx context.Context, req Request) (*CampaignsResponse, error) {
	list, err := s.campaignsWindow(ctx, req.Window, req.Platforms, req.MinSpend)
	if err != nil {
		return nil, err
	}
	list = truncate(nonNil(list), req.Limit)
	return &CampaignsResponse{Data: list, Total: len(list)}, nil
}

// CampaignsCompare joins current and previous window campaign aggregates.
// A campaign is retained when its spend meets min_spend in either window.
// Both sides are fetched unfiltered and the floor is applied after the
// join: a side that merely ran below the threshold still contributes its
// real sums, and is_new/is_lost keep meaning actual absence from a window.
func (s *Service) CampaignsCompare(ctx context.Context, req Request) (*CampaignsCompareResponse, error) {
	cur, err := s.campaignsWindow(ctx, req.Window, req.Platforms, 0)
	if err != nil {
		return nil, err
	}
	prev, err := s.campaignsWindow(ctx, req.PrevWindow(), req.Platforms, 0)
	if err != nil {
		return nil, err
	}

	joined := JoinCampaigns(cur, prev)
	if req.MinSpend > 0 {
		kept := make([]CampaignCompareRow, 0, len(joined))
		for _, row := range joined {
			if row.SpendCur >= req.MinSpend || row.SpendPrev >= req.MinSpend {
				kept = append(kept, row)
			}
		}
		joined = kept
	}
	return &CampaignsCompareResponse{Data: truncate(nonNil(joined), req.Limit)}, nil
}

// CampaignsWoW compares each campaign's current calendar week against the
// previous complete week.
func (s *Service) CampaignsWoW(ctx context.Context, platforms []string) (*WoWResponse, error) {
	curWin, prevWin := s.weekWindows()

	cur, err := s.campaignsWindow(ctx, curWin, platforms, 0)
	if err != nil {
		return nil, err
	}
	prev, err := s.campaignsWindow(ctx, prevWin, platforms, 0)
	if err != nil {
		return nil, err
	}

	joined := JoinCampaigns(cur, prev)
	out := make([]WoWRow, 0, len(joined))
	for _, row := range joined {
		out = append(out, WoWRow{
			Platform:     row.Platform,
			CampaignName: row.CampaignName,
			LeadsCur:     row.LeadsCur,
			LeadsPrev:    row.LeadsPrev,
			LeadsDiff:    row.LeadsDiff,
			LeadsDiffPct: row.LeadsDiffPct,
			SpendCur:     row.SpendCur,
			SpendPrev:    row.SpendPrev,
			CPLCur:       row.CPLCur,
			CPLPrev:      row.CPLPrev,
		})
	}
	return &WoWResponse{Data: nonNil(out)}, nil
}

// scatterCap bounds the scatter matrix payload regardless of limit.
const scatterCap = 50

// ScatterMatrix returns per-campaign CPL/ROAS bubbles sized by spend.
func (s *Service) ScatterMatrix(ctx context.Context, req Request) (*ScatterResponse, error) {
	query, args := s.qb.Scatter(req.Window, req.Platforms, req.MinLeads, req.MinSpend)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScatterPoint
	for rows.Next() {
		var (
			p       ScatterPoint
			revenue float64
		)
		if err := rows.Scan(&p.Platform, &p.CampaignID, &p.CampaignName, &p.Leads, &p.Spend, &revenue); err != nil {
			return nil, fmt.Errorf("scan scatter: %w", warehouse.ScanErr(err))
		}
		p.CPL = CPL(p.Spend, float64(p.Leads))
		p.ROAS = ROAS(revenue, p.Spend)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &ScatterResponse{Data: truncate(nonNil(out), scatterCap)}, nil
}

// Anomalies flags campaigns whose current window departs from a trailing
// baseline (the 30 days immediately preceding the window).
func (s *Service) Anomalies(ctx context.Context, req Request) (*AnomaliesResponse, error) {
	baselineWin := Window{
		From: req.Window.From.AddDate(0, 0, -s.anomaly.BaselineDays),
		To:   req.Window.From.AddDate(0, 0, -1),
	}

	baselines, err := s.anomalyBaselines(ctx, baselineWin, req.Platforms)
	if err != nil {
		return nil, err
	}
	current, err := s.anomalyCurrent(ctx, req.Window, req.Platforms)
	if err != nil {
		return nil, err
	}

	flagged := DetectAnomalies(current, baselines, s.anomaly, req.Window.Days(), req.Limit)
	return &AnomaliesResponse{Data: nonNil(flagged)}, nil
}

func (s *Service) anomalyBaselines(ctx context.Context, w Window, platforms []string) ([]BaselineStats, error) {
	query, args := s.qb.AnomalyBaseline(w, platforms)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BaselineStats
	for rows.Next() {
		var (
			b      BaselineStats
			avgCPL sql.NullFloat64
		)
		if err := rows.Scan(&b.Platform, &b.CampaignID, &b.CampaignName,
			&b.CPLDays, &avgCPL, &b.StddevCPL, &b.AvgLeads, &b.AvgSpend); err != nil {
			return nil, fmt.Errorf("scan baseline: %w", warehouse.ScanErr(err))
		}
		b.AvgCPL = nullableFloat(avgCPL)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return out, nil
}

func (s *Service) anomalyCurrent(ctx context.Context, w Window, platforms []string) ([]CurrentStats, error) {
	query, args := s.qb.AnomalyCurrent(w, platforms)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CurrentStats
	for rows.Next() {
		var (
			c   CurrentStats
			cpl sql.NullFloat64
		)
		if err := rows.Scan(&c.Platform, &c.CampaignID, &c.CampaignName,
			&c.AvgDailyLeads, &c.Spend, &cpl); err != nil {
			return nil, fmt.Errorf("scan anomaly current: %w", warehouse.ScanErr(err))
		}
		c.CPL = nullableFloat(cpl)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return out, nil
}

// classifiedMovers produces the joined, classified, sorted mover rows
// shared by top-movers and budget recommendations.
func (s *Service) classifiedMovers(ctx context.Context, req Request, t Thresholds) ([]MoverRow, error) {
	cur, err := s.campaignsWindow(ctx, req.Window, req.Platforms, 0)
	if err != nil {
		return nil, err
	}
	prev, err := s.campaignsWindow(ctx, req.PrevWindow(), req.Platforms, 0)
	if err != nil {
		return nil, err
	}

	joined := JoinCampaigns(cur, prev)
	out := make([]MoverRow, 0, len(joined))
	for _, row := range joined {
		out = append(out, MoverRow{
			CampaignCompareRow: row,
			Action:             ClassifyMover(row, t),
		})
	}
	SortMovers(out)
	return out, nil
}

// TopMovers buckets classified campaigns into winners (scale), losers
// (pause) and watch, each capped to n.
func (s *Service) TopMovers(ctx context.Context, req Request, t Thresholds, n int) (*TopMoversResponse, error) {
	movers, err := s.classifiedMovers(ctx, req, t)
	if err != nil {
		return nil, err
	}

	resp := &TopMoversResponse{
		Winners: []MoverRow{},
		Losers:  []MoverRow{},
		Watch:   []MoverRow{},
	}
	for _, m := range movers {
		switch m.Action {
		case ActionScale:
			resp.Winners = append(resp.Winners, m)
		case ActionPause:
			resp.Losers = append(resp.Losers, m)
		default:
			resp.Watch = append(resp.Watch, m)
		}
	}
	resp.Winners = truncate(resp.Winners, n)
	resp.Losers = truncate(resp.Losers, n)
	resp.Watch = truncate(resp.Watch, n)
	return resp, nil
}

// BudgetRecommendations returns the classified campaigns as one list,
// scale first, capped to limit.
func (s *Service) BudgetRecommendations(ctx context.Context, req Request, t Thresholds) (*BudgetRecoResponse, error) {
	movers, err := s.classifiedMovers(ctx, req, t)
	if err != nil {
		return nil, err
	}
	return &BudgetRecoResponse{Data: truncate(nonNil(movers), req.Limit)}, nil
}

// CampaignInsights labels each campaign with a qualitative performance
// bucket.
func (s *Service) CampaignInsights(ctx context.Context, req Request) (*InsightsResponse, error) {
	query, args := s.qb.InsightRows(req.Window)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InsightRow
	for rows.Next() {
		var r InsightRow
		if err := rows.Scan(&r.Platform, &r.CampaignID, &r.CampaignName,
			&r.Leads, &r.Contracts, &r.Revenue, &r.Spend); err != nil {
			return nil, fmt.Errorf("scan insight: %w", warehouse.ScanErr(err))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}

	LabelInsights(out)
	return &InsightsResponse{Data: truncate(nonNil(out), req.Limit)}, nil
}
