package warehouse

import (
	"sort"
	"strings"
)

// CanonicalPlatforms is the closed platform set exposed by the API. Source
// views are inconsistent about naming ('Meta' vs 'meta' vs 'facebook'), so
// every platform token crossing the adapter boundary goes through
// NormalizePlatform first.
var CanonicalPlatforms = []string{"direct", "email", "google", "meta", "organic", "other"}

var platformAliases = map[string]string{
	"google":     "google",
	"google ads": "google",
	"googleads":  "google",
	"adwords":    "google",
	"gads":       "google",
	"youtube":    "google",
	"meta":       "meta",
	"facebook":   "meta",
	"fb":         "meta",
	"instagram":  "meta",
	"ig":         "meta",
	"direct":     "direct",
	"none":       "direct",
	"organic":    "organic",
	"seo":        "organic",
	"email":      "email",
	"newsletter": "email",
	"other":      "other",
}

// NormalizePlatform maps a raw platform token from a request or a warehouse
// row to its canonical name. The second return is false for unknown tokens.
func NormalizePlatform(raw string) (string, bool) {
	p, ok := platformAliases[strings.ToLower(strings.TrimSpace(raw))]
	return p, ok
}

// NormalizePlatforms canonicalizes, de-duplicates and sorts a platform list.
// Returns the first unknown token, if any.
func NormalizePlatforms(raw []string) ([]string, string) {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, r := range raw {
		p, ok := NormalizePlatform(r)
		if !ok {
			return nil, r
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, ""
}

// IsCanonicalPlatform reports whether p is a member of the canonical set.
func IsCanonicalPlatform(p string) bool {
	for _, c := range CanonicalPlatforms {
		if p == c {
			return true
		}
	}
	return false
}
