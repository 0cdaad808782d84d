package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adlytics/funnel-api/internal/analytics"
	"github.com/adlytics/funnel-api/internal/config"
	"github.com/adlytics/funnel-api/internal/warehouse"
)

const dateLayout = "2006-01-02"

// maxWindowDays caps a single request's window. Larger ranges belong in a
// scheduled export, not an interactive dashboard call.
const maxWindowDays = 366

func parseDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, badRequestf(fmt.Sprintf("missing required parameter %q", name))
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, badRequestf(fmt.Sprintf("parameter %q must be YYYY-MM-DD, got %q", name, raw))
	}
	return t, nil
}

// parseWindow validates date_from/date_to. Both are required, inclusive, and
// date_from must not be after date_to.
func parseWindow(r *http.Request) (analytics.Window, error) {
	from, err := parseDate(r, "date_from")
	if err != nil {
		return analytics.Window{}, err
	}
	to, err := parseDate(r, "date_to")
	if err != nil {
		return analytics.Window{}, err
	}
	if to.Before(from) {
		return analytics.Window{}, badRequestf("date_to must not be before date_from")
	}
	w := analytics.Window{From: from, To: to}
	if w.Days() > maxWindowDays {
		return analytics.Window{}, badRequestf(fmt.Sprintf("window exceeds %d days", maxWindowDays))
	}
	return w, nil
}

// parsePrevWindow reads the optional prev_from/prev_to override. Both must
// be present together.
func parsePrevWindow(r *http.Request) (*analytics.Window, error) {
	rawFrom := r.URL.Query().Get("prev_from")
	rawTo := r.URL.Query().Get("prev_to")
	if rawFrom == "" && rawTo == "" {
		return nil, nil
	}
	if rawFrom == "" || rawTo == "" {
		return nil, badRequestf("prev_from and prev_to must be provided together")
	}
	from, err := parseDate(r, "prev_from")
	if err != nil {
		return nil, err
	}
	to, err := parseDate(r, "prev_to")
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, badRequestf("prev_to must not be before prev_from")
	}
	return &analytics.Window{From: from, To: to}, nil
}

// parsePlatforms normalizes the comma-separated platforms parameter to the
// canonical set. Unknown tokens are rejected, not silently dropped.
func parsePlatforms(r *http.Request) ([]string, error) {
	raw := r.URL.Query().Get("platforms")
	if raw == "" {
		return nil, nil
	}
	platforms, bad := warehouse.NormalizePlatforms(splitCSV(raw))
	if bad != "" {
		return nil, badRequestf(fmt.Sprintf("unknown platform %q", bad))
	}
	return platforms, nil
}

// parsePlatform reads a single optional platform parameter.
func parsePlatform(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("platform")
	if raw == "" {
		return "", nil
	}
	p, ok := warehouse.NormalizePlatform(raw)
	if !ok {
		return "", badRequestf(fmt.Sprintf("unknown platform %q", raw))
	}
	return p, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// parseLimit reads limit with an endpoint default and cap.
func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, badRequestf(fmt.Sprintf("limit must be a positive integer, got %q", raw))
	}
	if n > max {
		return 0, badRequestf(fmt.Sprintf("limit must not exceed %d", max))
	}
	return n, nil
}

func parseFloatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, badRequestf(fmt.Sprintf("parameter %q must be a non-negative number, got %q", name, raw))
	}
	return v, nil
}

// parseThresholds reads classifier thresholds with the configured tenant
// defaults. Any of them can be overridden per request.
func parseThresholds(r *http.Request, def config.RecoConfig) (analytics.Thresholds, error) {
	var (
		t   analytics.Thresholds
		err error
	)
	if t.TargetROAS, err = parseFloatParam(r, "target_roas", def.TargetROAS); err != nil {
		return t, err
	}
	if t.KillROAS, err = parseFloatParam(r, "kill_roas", def.KillROAS); err != nil {
		return t, err
	}
	if t.TargetCPL, err = parseFloatParam(r, "target_cpl", def.TargetCPL); err != nil {
		return t, err
	}
	if t.MinLeads, err = parseFloatParam(r, "min_leads", def.MinLeads); err != nil {
		return t, err
	}
	if t.MinSpend, err = parseFloatParam(r, "min_spend", def.MinSpend); err != nil {
		return t, err
	}
	return t, nil
}

// parseCompareMode reconciles the compare_mode token with the prev-window
// override. "auto" forces the symmetric preceding window, "custom" requires
// explicit prev bounds; when the token is absent the prev bounds alone
// decide.
func parseCompareMode(r *http.Request, prev *analytics.Window) (*analytics.Window, error) {
	switch mode := r.URL.Query().Get("compare_mode"); mode {
	case "":
		return prev, nil
	case "auto":
		return nil, nil
	case "custom":
		if prev == nil {
			return nil, badRequestf("compare_mode=custom requires prev_from and prev_to")
		}
		return prev, nil
	default:
		return nil, badRequestf(fmt.Sprintf("compare_mode must be auto or custom, got %q", mode))
	}
}

// parseGroupBy validates the timeline granularity against the allow-list.
func parseGroupBy(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("group_by")
	if raw == "" {
		return "day", nil
	}
	switch raw {
	case "day", "week", "month":
		return raw, nil
	}
	return "", badRequestf(fmt.Sprintf("group_by must be day, week or month, got %q", raw))
}
