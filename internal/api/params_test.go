package api

import (
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/adlytics/funnel-api/internal/analytics"
)

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseWindow(t *testing.T) {
	r := httptest.NewRequest("GET", "/v5/kpi?date_from=2025-01-01&date_to=2025-01-07", nil)
	w, err := parseWindow(r)
	if err != nil {
		t.Fatalf("parseWindow: %v", err)
	}
	if w.FromStr() != "2025-01-01" || w.ToStr() != "2025-01-07" {
		t.Errorf("window = [%s, %s]", w.FromStr(), w.ToStr())
	}

	bad := []string{
		"/x",                                          // both missing
		"/x?date_from=2025-01-01",                     // to missing
		"/x?date_from=01/01/2025&date_to=2025-01-07",  // wrong format
		"/x?date_from=2025-01-07&date_to=2025-01-01",  // inverted
		"/x?date_from=2020-01-01&date_to=2025-01-01",  // over the range cap
		"/x?date_from=2025-02-30&date_to=2025-03-01",  // impossible date
	}
	for _, url := range bad {
		r := httptest.NewRequest("GET", url, nil)
		if _, err := parseWindow(r); err == nil {
			t.Errorf("parseWindow(%q) accepted invalid input", url)
		}
	}

	// Single-day window is valid.
	r = httptest.NewRequest("GET", "/x?date_from=2025-01-01&date_to=2025-01-01", nil)
	if _, err := parseWindow(r); err != nil {
		t.Errorf("single-day window rejected: %v", err)
	}
}

func TestParsePrevWindow(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	prev, err := parsePrevWindow(r)
	if err != nil || prev != nil {
		t.Errorf("absent prev window = %v, %v; want nil, nil", prev, err)
	}

	r = httptest.NewRequest("GET", "/x?prev_from=2024-12-01&prev_to=2024-12-07", nil)
	prev, err = parsePrevWindow(r)
	if err != nil || prev == nil || prev.FromStr() != "2024-12-01" {
		t.Errorf("explicit prev window = %v, %v", prev, err)
	}

	// One half alone is a 400.
	r = httptest.NewRequest("GET", "/x?prev_from=2024-12-01", nil)
	if _, err := parsePrevWindow(r); err == nil {
		t.Error("lonely prev_from accepted")
	}
}

func TestParseCompareMode(t *testing.T) {
	prev := &analytics.Window{From: day("2024-12-01"), To: day("2024-12-07")}

	// Absent token: the prev bounds decide.
	r := httptest.NewRequest("GET", "/x", nil)
	if got, err := parseCompareMode(r, prev); err != nil || got != prev {
		t.Errorf("absent mode = %v, %v; want prev passthrough", got, err)
	}
	if got, err := parseCompareMode(r, nil); err != nil || got != nil {
		t.Errorf("absent mode without prev = %v, %v; want nil", got, err)
	}

	// auto forces the symmetric window even when explicit bounds came in.
	r = httptest.NewRequest("GET", "/x?compare_mode=auto", nil)
	if got, err := parseCompareMode(r, prev); err != nil || got != nil {
		t.Errorf("auto = %v, %v; want nil, nil", got, err)
	}

	// custom requires explicit bounds.
	r = httptest.NewRequest("GET", "/x?compare_mode=custom", nil)
	if got, err := parseCompareMode(r, prev); err != nil || got != prev {
		t.Errorf("custom with bounds = %v, %v", got, err)
	}
	if _, err := parseCompareMode(r, nil); err == nil {
		t.Error("custom without prev bounds accepted")
	}

	// Unknown tokens are a 400.
	r = httptest.NewRequest("GET", "/x?compare_mode=yoy", nil)
	if _, err := parseCompareMode(r, prev); err == nil {
		t.Error("unknown compare_mode accepted")
	}
}

func TestParsePlatforms(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?platforms=Facebook,google,%20fb", nil)
	got, err := parsePlatforms(r)
	if err != nil {
		t.Fatalf("parsePlatforms: %v", err)
	}
	if want := []string{"google", "meta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	r = httptest.NewRequest("GET", "/x?platforms=google,tiktok", nil)
	if _, err := parsePlatforms(r); err == nil {
		t.Error("unknown platform token accepted")
	}

	r = httptest.NewRequest("GET", "/x", nil)
	got, err = parsePlatforms(r)
	if err != nil || got != nil {
		t.Errorf("absent platforms = %v, %v; want nil, nil", got, err)
	}
}

func TestParseLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	if n, err := parseLimit(r, 50, 500); err != nil || n != 50 {
		t.Errorf("default limit = %d, %v", n, err)
	}

	r = httptest.NewRequest("GET", "/x?limit=10", nil)
	if n, err := parseLimit(r, 50, 500); err != nil || n != 10 {
		t.Errorf("explicit limit = %d, %v", n, err)
	}

	for _, raw := range []string{"0", "-5", "abc", "501"} {
		r = httptest.NewRequest("GET", "/x?limit="+raw, nil)
		if _, err := parseLimit(r, 50, 500); err == nil {
			t.Errorf("limit=%q accepted", raw)
		}
	}
}

func TestParseThresholds(t *testing.T) {
	defaults := testRecoConfig()

	r := httptest.NewRequest("GET", "/x", nil)
	th, err := parseThresholds(r, defaults)
	if err != nil {
		t.Fatalf("parseThresholds: %v", err)
	}
	if th.TargetROAS != 3.0 || th.KillROAS != 0.8 || th.MinSpend != 100 {
		t.Errorf("defaults not applied: %+v", th)
	}

	r = httptest.NewRequest("GET", "/x?target_roas=5&min_spend=250", nil)
	th, err = parseThresholds(r, defaults)
	if err != nil {
		t.Fatalf("parseThresholds: %v", err)
	}
	if th.TargetROAS != 5 || th.MinSpend != 250 || th.KillROAS != 0.8 {
		t.Errorf("overrides not applied: %+v", th)
	}

	r = httptest.NewRequest("GET", "/x?kill_roas=-1", nil)
	if _, err := parseThresholds(r, defaults); err == nil {
		t.Error("negative threshold accepted")
	}
}

func TestParseGroupBy(t *testing.T) {
	r := httptest.NewRequest("GET", "/x", nil)
	if g, err := parseGroupBy(r); err != nil || g != "day" {
		t.Errorf("default group_by = %q, %v", g, err)
	}
	for _, g := range []string{"day", "week", "month"} {
		r := httptest.NewRequest("GET", "/x?group_by="+g, nil)
		if got, err := parseGroupBy(r); err != nil || got != g {
			t.Errorf("group_by=%s = %q, %v", g, got, err)
		}
	}
	r = httptest.NewRequest("GET", "/x?group_by=hour", nil)
	if _, err := parseGroupBy(r); err == nil {
		t.Error("group_by=hour accepted")
	}
}
