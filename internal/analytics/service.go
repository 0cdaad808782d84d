package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adlytics/funnel-api/internal/config"
	"github.com/adlytics/funnel-api/internal/warehouse"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by resource-addressed operations when the
// addressed entity has no rows in the window.
var ErrNotFound = errors.New("not found")

// Service pairs the query builder with the warehouse adapter and owns the
// endpoint-family operations. It holds no mutable state; concurrent
// requests share only the adapter's connection pool.
type Service struct {
	wh        *warehouse.Adapter
	qb        *QueryBuilder
	log       *logrus.Logger
	anomaly   config.AnomalyConfig
	weekStart time.Weekday

	// now is swappable for week-over-week tests.
	now func() time.Time
}

// NewService creates the analytics service.
func NewService(wh *warehouse.Adapter, log *logrus.Logger, anomaly config.AnomalyConfig, weekStart time.Weekday) *Service {
	return &Service{
		wh:        wh,
		qb:        NewQueryBuilder(wh.Dialect()),
		log:       log,
		anomaly:   anomaly,
		weekStart: weekStart,
		now:       time.Now,
	}
}

// KPI returns the aggregate card for the window and platform set.
func (s *Service) KPI(ctx context.Context, req Request) (*KPISummary, error) {
	query, args := s.qb.KPI(req.Window, req.Platforms)
	row, err := s.wh.QueryRow(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var (
		out       KPISummary
		cpl, roas sql.NullFloat64
	)
	if err := row.Scan(&out.Leads, &out.Contracts, &out.Revenue, &out.Spend, &cpl, &roas); err != nil {
		if err == sql.ErrNoRows {
			return &KPISummary{}, nil
		}
		return nil, fmt.Errorf("scan kpi: %w", warehouse.ScanErr(err))
	}
	out.CPL = nullableFloat(cpl)
	out.ROAS = nullableFloat(roas)
	return &out, nil
}

// KPICompare runs the KPI aggregate over the current and previous windows
// sequentially and joins the two cards with deltas.
func (s *Service) KPICompare(ctx context.Context, req Request) (*KPICompare, error) {
	cur, err := s.KPI(ctx, req)
	if err != nil {
		return nil, err
	}
	prevReq := req
	prevReq.Window = req.PrevWindow()
	prev, err := s.KPI(ctx, prevReq)
	if err != nil {
		return nil, err
	}

	return &KPICompare{
		LeadsCur:         cur.Leads,
		LeadsPrev:        prev.Leads,
		LeadsDiff:        cur.Leads - prev.Leads,
		LeadsDiffPct:     PctDiff(float64(cur.Leads), float64(prev.Leads)),
		ContractsCur:     cur.Contracts,
		ContractsPrev:    prev.Contracts,
		ContractsDiff:    cur.Contracts - prev.Contracts,
		ContractsDiffPct: PctDiff(float64(cur.Contracts), float64(prev.Contracts)),
		RevenueCur:       cur.Revenue,
		RevenuePrev:      prev.Revenue,
		RevenueDiff:      cur.Revenue - prev.Revenue,
		RevenueDiffPct:   PctDiff(cur.Revenue, prev.Revenue),
		SpendCur:         cur.Spend,
		SpendPrev:        prev.Spend,
		SpendDiff:        cur.Spend - prev.Spend,
		SpendDiffPct:     PctDiff(cur.Spend, prev.Spend),
		CPLCur:           cur.CPL,
		CPLPrev:          prev.CPL,
		ROASCur:          cur.ROAS,
		ROASPrev:         prev.ROAS,
	}, nil
}

// trend fetches one metric summed per day as a date-keyed map plus the
// ordered day list.
func (s *Service) trend(ctx context.Context, w Window, platforms []string, metric string) ([]TrendPoint, error) {
	query, args := s.qb.Trend(w, platforms, metric)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrendPoint
	for rows.Next() {
		var (
			dt  time.Time
			val float64
		)
		if err := rows.Scan(&dt, &val); err != nil {
			return nil, fmt.Errorf("scan trend: %w", warehouse.ScanErr(err))
		}
		out = append(out, TrendPoint{Date: dt.Format(dateLayout), Value: val})
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return out, nil
}

// LeadsTrend returns daily lead counts, missing days omitted.
func (s *Service) LeadsTrend(ctx context.Context, req Request) ([]LeadsTrendPoint, error) {
	points, err := s.trend(ctx, req.Window, req.Platforms, "leads")
	if err != nil {
		return nil, err
	}
	out := make([]LeadsTrendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, LeadsTrendPoint{Date: p.Date, Leads: int64(p.Value)})
	}
	return out, nil
}

// SpendTrend returns daily spend, missing days omitted.
func (s *Service) SpendTrend(ctx context.Context, req Request) ([]SpendTrendPoint, error) {
	points, err := s.trend(ctx, req.Window, req.Platforms, "spend")
	if err != nil {
		return nil, err
	}
	out := make([]SpendTrendPoint, 0, len(points))
	for _, p := range points {
		out = append(out, SpendTrendPoint{Date: p.Date, Spend: p.Value})
	}
	return out, nil
}

// trendCompare runs the metric trend over both windows and aligns the
// previous series onto the current calendar. Every current-window day
// emits a row; absent days are zero.
func (s *Service) trendCompare(ctx context.Context, req Request, metric string) ([]TrendComparePoint, error) {
	prevWin := req.PrevWindow()

	cur, err := s.trend(ctx, req.Window, req.Platforms, metric)
	if err != nil {
		return nil, err
	}
	prev, err := s.trend(ctx, prevWin, req.Platforms, metric)
	if err != nil {
		return nil, err
	}

	curVals := make(map[string]float64, len(cur))
	for _, p := range cur {
		curVals[p.Date] = p.Value
	}
	prevVals := make(map[string]float64, len(prev))
	for _, p := range prev {
		prevVals[p.Date] = p.Value
	}

	return AlignTrendCompare(req.Window, prevWin, curVals, prevVals), nil
}

// LeadsTrendCompare aligns previous-window daily leads onto the current
// calendar.
func (s *Service) LeadsTrendCompare(ctx context.Context, req Request) ([]LeadsTrendComparePoint, error) {
	points, err := s.trendCompare(ctx, req, "leads")
	if err != nil {
		return nil, err
	}
	out := make([]LeadsTrendComparePoint, 0, len(points))
	for _, p := range points {
		out = append(out, LeadsTrendComparePoint{
			Date:             p.Date,
			LeadsCur:         int64(p.Cur),
			LeadsPrevShifted: int64(p.PrevShift),
		})
	}
	return out, nil
}

// SpendTrendCompare aligns previous-window daily spend onto the current
// calendar.
func (s *Service) SpendTrendCompare(ctx context.Context, req Request) ([]SpendTrendComparePoint, error) {
	points, err := s.trendCompare(ctx, req, "spend")
	if err != nil {
		return nil, err
	}
	out := make([]SpendTrendComparePoint, 0, len(points))
	for _, p := range points {
		out = append(out, SpendTrendComparePoint{
			Date:             p.Date,
			SpendCur:         p.Cur,
			SpendPrevShifted: p.PrevShift,
		})
	}
	return out, nil
}

// MetricsTrend returns the daily volume series with all derived ratios.
func (s *Service) MetricsTrend(ctx context.Context, req Request) ([]MetricsTrendPoint, error) {
	query, args := s.qb.MetricsTrend(req.Window, req.Platforms)
	rows, err := s.wh.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MetricsTrendPoint
	for rows.Next() {
		var (
			dt                         time.Time
			leads, clicks, impressions int64
			spend                      float64
		)
		if err := rows.Scan(&dt, &leads, &clicks, &impressions, &spend); err != nil {
			return nil, fmt.Errorf("scan metrics trend: %w", warehouse.ScanErr(err))
		}
		out = append(out, MetricsTrendPoint{
			Date:        dt.Format(dateLayout),
			Leads:       leads,
			Clicks:      clicks,
			Impressions: impressions,
			Spend:       spend,
			CPL:         CPL(spend, float64(leads)),
			CPC:         CPC(spend, float64(clicks)),
			CTR:         CTR(float64(clicks), float64(impressions)),
			CPM:         CPM(spend, float64(impressions)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, warehouse.ScanErr(err)
	}
	return out, nil
}

// weekWindows returns the current calendar week (week start through today)
// and the previous complete week, honoring the configured week start day.
func (s *Service) weekWindows() (Window, Window) {
	// Derive the calendar date in the clock's own zone. Truncate would cut
	// at the UTC day boundary and report yesterday near local midnight.
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(today.Weekday()) - int(s.weekStart) + 7) % 7
	weekStart := today.AddDate(0, 0, -offset)
	cur := Window{From: weekStart, To: today}
	prev := Window{From: weekStart.AddDate(0, 0, -7), To: weekStart.AddDate(0, 0, -1)}
	return cur, prev
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
