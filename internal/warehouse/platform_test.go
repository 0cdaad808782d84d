package warehouse

import (
	"reflect"
	"testing"
)

func TestNormalizePlatform(t *testing.T) {
	cases := map[string]string{
		"google":     "google",
		"GOOGLE":     "google",
		"AdWords":    "google",
		"youtube":    "google",
		"facebook":   "meta",
		"FB":         "meta",
		"Instagram":  "meta",
		" meta ":     "meta",
		"seo":        "organic",
		"newsletter": "email",
		"none":       "direct",
		"other":      "other",
	}
	for raw, want := range cases {
		got, ok := NormalizePlatform(raw)
		if !ok || got != want {
			t.Errorf("NormalizePlatform(%q) = %q, %v; want %q", raw, got, ok, want)
		}
	}

	if _, ok := NormalizePlatform("tiktok"); ok {
		t.Error("unknown platform should not normalize")
	}
	if _, ok := NormalizePlatform(""); ok {
		t.Error("empty token should not normalize")
	}
}

func TestNormalizePlatforms(t *testing.T) {
	got, bad := NormalizePlatforms([]string{"Facebook", "google", "fb", "adwords"})
	if bad != "" {
		t.Fatalf("unexpected bad token %q", bad)
	}
	// Canonicalized, de-duplicated, sorted.
	if want := []string{"google", "meta"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	_, bad = NormalizePlatforms([]string{"google", "myspace"})
	if bad != "myspace" {
		t.Errorf("bad token = %q, want myspace", bad)
	}
}

func TestCanonicalSetIsClosedUnderAliases(t *testing.T) {
	for raw, canon := range platformAliases {
		if !IsCanonicalPlatform(canon) {
			t.Errorf("alias %q maps to %q, which is not canonical", raw, canon)
		}
	}
}
