package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/adlytics/funnel-api/internal/warehouse"
)

// platformShares fetches per-platform lead counts and derives each
// platform's share of the window total.
func (s *Service) platformShares(ctx context.Context, w Window, platforms []string) ([]ShareRow, error) {
	query, args := s.qb.PlatformLeads(w, platforms)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ShareRow
	var total int64
	for rows.Next() {
		var r ShareRow
		if err := rows.Scan(&r.Platform, &r.Leads); err != nil {
			return nil, fmt.Errorf("scan share: %w", warehouse.ScanErr(err))
		}
		total += r.Leads
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}

	for i := range out {
		out[i].SharePct = pct(float64(out[i].Leads), float64(total))
	}
	return out, nil
}

// PlatformShare returns each platform's slice of total leads.
func (s *Service) PlatformShare(ctx context.Context, req Request) (*ShareResponse, error) {
	shares, err := s.platformShares(ctx, req.Window, req.Platforms)
	if err != nil {
		return nil, err
	}
	return &ShareResponse{Data: nonNil(shares)}, nil
}

// PlatformShareCompare joins current and previous shares and emits the
// percentage-point delta.
func (s *Service) PlatformShareCompare(ctx context.Context, req Request) (*ShareCompareResponse, error) {
	cur, err := s.platformShares(ctx, req.Window, req.Platforms)
	if err != nil {
		return nil, err
	}
	prev, err := s.platformShares(ctx, req.PrevWindow(), req.Platforms)
	if err != nil {
		return nil, err
	}
	return &ShareCompareResponse{Data: nonNil(CompareShares(cur, prev))}, nil
}

// UTMSources returns per-source aggregates, most leads first.
func (s *Service) UTMSources(ctx context.Context, req Request) (*UTMSourcesResponse, error) {
	query, args := s.qb.UTMSources(req.Window, req.Platforms)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UTMSourceRow
	for rows.Next() {
		var r UTMSourceRow
		if err := rows.Scan(&r.Platform, &r.UTMSource, &r.Leads, &r.Contracts, &r.Revenue, &r.Spend); err != nil {
			return nil, fmt.Errorf("scan utm source: %w", warehouse.ScanErr(err))
		}
		r.CPL = CPL(r.Spend, float64(r.Leads))
		r.CVR = CVR(float64(r.Contracts), float64(r.Leads))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &UTMSourcesResponse{Data: truncate(nonNil(out), req.Limit)}, nil
}

// paidSplit scans the shared paid/organic row shape.
func (s *Service) paidSplit(ctx context.Context, query string, args []interface{}) (*PaidSplitResponse, error) {
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaidSplitRow
	for rows.Next() {
		var r PaidSplitRow
		if err := rows.Scan(&r.Entity, &r.PaidLeads, &r.OrganicLeads); err != nil {
			return nil, fmt.Errorf("scan paid split: %w", warehouse.ScanErr(err))
		}
		r.TotalLeads = r.PaidLeads + r.OrganicLeads
		r.PaidSharePct = pct(float64(r.PaidLeads), float64(r.TotalLeads))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &PaidSplitResponse{Data: nonNil(out)}, nil
}

// PaidSplitPlatforms splits lead volume into paid vs organic per platform.
func (s *Service) PaidSplitPlatforms(ctx context.Context, req Request) (*PaidSplitResponse, error) {
	query, args := s.qb.PaidSplitPlatforms(req.Window)
	return s.paidSplit(ctx, query, args)
}

// PaidSplitCampaigns splits lead volume into paid vs organic per attributed
// campaign, optionally for one platform.
func (s *Service) PaidSplitCampaigns(ctx context.Context, req Request, platform string) (*PaidSplitResponse, error) {
	query, args := s.qb.PaidSplitCampaigns(req.Window, platform)
	return s.paidSplit(ctx, query, args)
}

// Funnel returns the daily impression -> contract funnel rows.
func (s *Service) Funnel(ctx context.Context, req Request, platform string) (*FunnelResponse, error) {
	query, args := s.qb.FunnelDaily(req.Window, platform)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FunnelRow
	for rows.Next() {
		var (
			r  FunnelRow
			dt time.Time
		)
		if err := rows.Scan(&dt, &r.Platform, &r.Impressions, &r.Clicks, &r.Leads, &r.Contracts, &r.Revenue); err != nil {
			return nil, fmt.Errorf("scan funnel: %w", warehouse.ScanErr(err))
		}
		r.Date = dt.Format(dateLayout)
		r.CTR = CTR(float64(r.Clicks), float64(r.Impressions))
		r.CVR = ClickToLead(float64(r.Leads), float64(r.Clicks))
		r.ContractRate = CVR(float64(r.Contracts), float64(r.Leads))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &FunnelResponse{Data: nonNil(out)}, nil
}

// Products returns per-product revenue aggregates.
func (s *Service) Products(ctx context.Context, req Request) (*ProductsResponse, error) {
	query, args := s.qb.Products(req.Window)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProductRow
	for rows.Next() {
		var r ProductRow
		if err := rows.Scan(&r.Product, &r.Leads, &r.Contracts, &r.Revenue); err != nil {
			return nil, fmt.Errorf("scan product: %w", warehouse.ScanErr(err))
		}
		r.AvgContractValue = AvgContractValue(r.Revenue, float64(r.Contracts))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &ProductsResponse{Data: truncate(nonNil(out), req.Limit)}, nil
}

// AttributionCoverage returns daily lead/contract attribution coverage.
func (s *Service) AttributionCoverage(ctx context.Context, req Request) (*CoverageResponse, error) {
	query, args := s.qb.AttributionCoverage(req.Window)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CoverageRow
	for rows.Next() {
		var (
			r  CoverageRow
			dt time.Time
		)
		if err := rows.Scan(&dt, &r.TotalLeads, &r.TotalContracts,
			&r.WithMetaCampaign, &r.WithGoogleCampaign, &r.WithUTM); err != nil {
			return nil, fmt.Errorf("scan coverage: %w", warehouse.ScanErr(err))
		}
		r.Date = dt.Format(dateLayout)
		r.PctMetaCampaign = pct(float64(r.WithMetaCampaign), float64(r.TotalLeads))
		r.PctGoogleCampaign = pct(float64(r.WithGoogleCampaign), float64(r.TotalLeads))
		r.PctUTM = pct(float64(r.WithUTM), float64(r.TotalLeads))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &CoverageResponse{Data: nonNil(out)}, nil
}

// AttributionSummary groups contracts by attribution type; response totals
// come from the same rows, no extra query.
func (s *Service) AttributionSummary(ctx context.Context, req Request) (*AttributionSummaryResponse, error) {
	query, args := s.qb.AttributionSummary(req.Window)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resp := &AttributionSummaryResponse{Data: []AttributionGroupRow{}}
	for rows.Next() {
		var r AttributionGroupRow
		if err := rows.Scan(&r.AttributionType, &r.TotalLeads, &r.Contracts, &r.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan attribution summary: %w", warehouse.ScanErr(err))
		}
		r.AvgContractValue = AvgContractValue(r.TotalRevenue, float64(r.Contracts))
		r.ConversionRate = CVR(float64(r.Contracts), float64(r.TotalLeads))
		resp.Data = append(resp.Data, r)
		resp.TotalLeads += r.TotalLeads
		resp.TotalContracts += r.Contracts
		resp.TotalRevenue += r.TotalRevenue
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	resp.OverallConversionRate = CVR(float64(resp.TotalContracts), float64(resp.TotalLeads))
	return resp, nil
}

// ContractsTimeline buckets contracts by day, week or month.
func (s *Service) ContractsTimeline(ctx context.Context, req Request, groupBy string) (*TimelineResponse, error) {
	query, args := s.qb.ContractsTimeline(req.Window, groupBy)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimelinePoint
	for rows.Next() {
		var (
			p      TimelinePoint
			period time.Time
		)
		if err := rows.Scan(&period, &p.Contracts, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scan timeline: %w", warehouse.ScanErr(err))
		}
		p.Period = period.Format(dateLayout)
		p.AvgContractValue = AvgContractValue(p.Revenue, float64(p.Contracts))
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &TimelineResponse{Data: nonNil(out)}, nil
}

// contractsBreakdown scans the shared (key, contracts, revenue) shape.
func (s *Service) contractsBreakdown(ctx context.Context, query string, args []interface{}) (*ContractsBreakdownResponse, error) {
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ContractsBreakdownRow
	for rows.Next() {
		var r ContractsBreakdownRow
		if err := rows.Scan(&r.Key, &r.Contracts, &r.Revenue); err != nil {
			return nil, fmt.Errorf("scan contracts breakdown: %w", warehouse.ScanErr(err))
		}
		r.AvgContractValue = AvgContractValue(r.Revenue, float64(r.Contracts))
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return &ContractsBreakdownResponse{Data: nonNil(out)}, nil
}

// ContractsByPlatform splits window contracts by dominant platform.
func (s *Service) ContractsByPlatform(ctx context.Context, req Request) (*ContractsBreakdownResponse, error) {
	query, args := s.qb.ContractsByPlatform(req.Window)
	return s.contractsBreakdown(ctx, query, args)
}

// ContractsBySource splits window contracts by utm_source.
func (s *Service) ContractsBySource(ctx context.Context, req Request, platform string) (*ContractsBreakdownResponse, error) {
	query, args := s.qb.ContractsBySource(req.Window, platform)
	return s.contractsBreakdown(ctx, query, args)
}

// scanCreatives reads the shared creative row shape.
func (s *Service) scanCreatives(ctx context.Context, query string, args []interface{}) ([]CreativeRow, error) {
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CreativeRow
	for rows.Next() {
		var (
			r                   CreativeRow
			firstSeen, lastSeen time.Time
		)
		if err := rows.Scan(&r.CreativeID, &r.CampaignID, &r.Title, &r.Body, &r.CTAType, &r.LinkURL,
			&r.TotalSpend, &r.TotalImpressions, &r.TotalClicks, &r.Leads, &r.Contracts,
			&r.Revenue, &firstSeen, &lastSeen, &r.DaysActive, &r.PerformanceStatus); err != nil {
			return nil, fmt.Errorf("scan creative: %w", warehouse.ScanErr(err))
		}
		r.FirstSeen = firstSeen.Format(dateLayout)
		r.LastSeen = lastSeen.Format(dateLayout)
		r.CPL = CPL(r.TotalSpend, float64(r.Leads))
		r.CTR = CTR(float64(r.TotalClicks), float64(r.TotalImpressions))
		r.ROAS = ROAS(r.Revenue, r.TotalSpend)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return out, nil
}

// Creatives lists creative aggregates overlapping the window.
func (s *Service) Creatives(ctx context.Context, req Request) (*CreativesResponse, error) {
	query, args := s.qb.Creatives(req.Window, req.Platforms, req.Limit)
	list, err := s.scanCreatives(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return &CreativesResponse{Data: nonNil(list)}, nil
}

// CreativesByCampaign lists one campaign's creatives. A campaign with no
// rows in the window is ErrNotFound.
func (s *Service) CreativesByCampaign(ctx context.Context, req Request, campaignID string) (*CreativesResponse, error) {
	query, args := s.qb.CreativesByCampaign(req.Window, campaignID)
	list, err := s.scanCreatives(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("campaign %s: %w", campaignID, ErrNotFound)
	}
	return &CreativesResponse{Data: list}, nil
}
