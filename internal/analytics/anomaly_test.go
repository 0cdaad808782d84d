package analytics

import (
	"testing"

	"github.com/adlytics/funnel-api/internal/config"
)

var anomalyCfg = config.AnomalyConfig{
	BaselineDays:     30,
	MinBaselineDays:  7,
	SpikeSigma:       2.0,
	HighSigma:        3.0,
	DropRatio:        0.5,
	HighDropRatio:    0.3,
	SpendSurgeFactor: 2.0,
}

func baseline(id string, cplDays int, avgCPL *float64, stddev, avgLeads, avgSpend float64) BaselineStats {
	return BaselineStats{
		Platform:   "google",
		CampaignID: id,
		CPLDays:    cplDays,
		AvgCPL:     avgCPL,
		StddevCPL:  stddev,
		AvgLeads:   avgLeads,
		AvgSpend:   avgSpend,
	}
}

func current(id string, avgDailyLeads, spend float64, cpl *float64) CurrentStats {
	return CurrentStats{
		Platform:      "google",
		CampaignID:    id,
		AvgDailyLeads: avgDailyLeads,
		Spend:         spend,
		CPL:           cpl,
	}
}

func TestDetectAnomaliesSpikeCPL(t *testing.T) {
	// Baseline CPL 10 +/- 2. Current CPL 15 exceeds mean + 2 sigma (14) but
	// not mean + 3 sigma (16): medium spike.
	rows := DetectAnomalies(
		[]CurrentStats{current("c1", 10, 150, fptr(15))},
		[]BaselineStats{baseline("c1", 10, fptr(10), 2, 10, 100)},
		anomalyCfg, 7, 0,
	)
	if len(rows) != 1 {
		t.Fatalf("got %d anomalies, want 1", len(rows))
	}
	if rows[0].AnomalyType != AnomalySpikeCPL || rows[0].Severity != SeverityMedium {
		t.Errorf("got %s/%s, want spike_cpl/medium", rows[0].AnomalyType, rows[0].Severity)
	}
	if rows[0].DeviationPct == nil || *rows[0].DeviationPct != 50 {
		t.Errorf("DeviationPct = %v, want 50", rows[0].DeviationPct)
	}

	// CPL 17 crosses the 3-sigma line: high.
	rows = DetectAnomalies(
		[]CurrentStats{current("c1", 10, 170, fptr(17))},
		[]BaselineStats{baseline("c1", 10, fptr(10), 2, 10, 100)},
		anomalyCfg, 7, 0,
	)
	if len(rows) != 1 || rows[0].Severity != SeverityHigh {
		t.Fatalf("3-sigma spike should be high, got %+v", rows)
	}
}

func TestDetectAnomaliesDropLeads(t *testing.T) {
	// Baseline 20 leads/day; current 8 is below half: medium drop.
	rows := DetectAnomalies(
		[]CurrentStats{current("c1", 8, 100, fptr(12.5))},
		[]BaselineStats{baseline("c1", 10, fptr(12), 1, 20, 240)},
		anomalyCfg, 7, 0,
	)
	if len(rows) != 1 || rows[0].AnomalyType != AnomalyDropLeads || rows[0].Severity != SeverityMedium {
		t.Fatalf("got %+v, want drop_leads/medium", rows)
	}

	// Below 30% of baseline: high.
	rows = DetectAnomalies(
		[]CurrentStats{current("c1", 5, 60, fptr(12))},
		[]BaselineStats{baseline("c1", 10, fptr(12), 1, 20, 240)},
		anomalyCfg, 7, 0,
	)
	if len(rows) != 1 || rows[0].Severity != SeverityHigh {
		t.Fatalf("got %+v, want drop_leads/high", rows)
	}
}

func TestDetectAnomaliesSpikeSpend(t *testing.T) {
	// Expected spend = 10 leads/day * CPL 10 * 7 days = 700. Current 1500
	// exceeds twice that. CPL and leads are in range, so the spend rule is
	// the one that fires, at low severity.
	rows := DetectAnomalies(
		[]CurrentStats{current("c1", 10, 1500, fptr(11))},
		[]BaselineStats{baseline("c1", 10, fptr(10), 2, 10, 100)},
		anomalyCfg, 7, 0,
	)
	if len(rows) != 1 || rows[0].AnomalyType != AnomalySpikeSpend || rows[0].Severity != SeverityLow {
		t.Fatalf("got %+v, want spike_spend/low", rows)
	}
}

func TestDetectAnomaliesEligibility(t *testing.T) {
	// Fewer than the minimum baseline days: ignored.
	rows := DetectAnomalies(
		[]CurrentStats{current("c1", 1, 1000, fptr(99))},
		[]BaselineStats{baseline("c1", 6, fptr(10), 1, 10, 100)},
		anomalyCfg, 7, 0,
	)
	if len(rows) != 0 {
		t.Errorf("campaign with 6 baseline days flagged: %+v", rows)
	}

	// No baseline at all: ignored.
	rows = DetectAnomalies(
		[]CurrentStats{current("no-baseline", 1, 1000, fptr(99))},
		nil, anomalyCfg, 7, 0,
	)
	if len(rows) != 0 {
		t.Errorf("campaign without baseline flagged: %+v", rows)
	}

	// Nil baseline CPL: ignored.
	rows = DetectAnomalies(
		[]CurrentStats{current("c1", 1, 1000, fptr(99))},
		[]BaselineStats{baseline("c1", 10, nil, 0, 10, 100)},
		anomalyCfg, 7, 0,
	)
	if len(rows) != 0 {
		t.Errorf("campaign with nil baseline CPL flagged: %+v", rows)
	}
}

func TestDetectAnomaliesOrderAndLimit(t *testing.T) {
	cur := []CurrentStats{
		current("medium-small", 10, 150, fptr(15)), // medium spike, deviation 0.5
		current("high", 10, 250, fptr(25)),         // high spike
		current("medium-big", 10, 180, fptr(18)),   // medium spike, deviation 0.8
	}
	base := []BaselineStats{
		baseline("medium-small", 10, fptr(10), 2, 10, 100),
		baseline("high", 10, fptr(10), 2, 10, 100),
		baseline("medium-big", 10, fptr(10), 3, 10, 100),
	}

	rows := DetectAnomalies(cur, base, anomalyCfg, 7, 0)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	want := []string{"high", "medium-big", "medium-small"}
	for i, id := range want {
		if rows[i].CampaignID != id {
			t.Fatalf("order = [%s %s %s], want %v", rows[0].CampaignID, rows[1].CampaignID, rows[2].CampaignID, want)
		}
	}

	limited := DetectAnomalies(cur, base, anomalyCfg, 7, 2)
	if len(limited) != 2 || limited[0].CampaignID != "high" {
		t.Errorf("limit should keep the most severe rows, got %+v", limited)
	}
}
