package analytics

import "testing"

func TestRatiosNullOnZeroDenominator(t *testing.T) {
	cases := []struct {
		name string
		got  *float64
	}{
		{"cpl", CPL(100, 0)},
		{"cpc", CPC(100, 0)},
		{"ctr", CTR(10, 0)},
		{"cpm", CPM(100, 0)},
		{"roas", ROAS(500, 0)},
		{"cvr", CVR(3, 0)},
		{"click_to_lead", ClickToLead(5, 0)},
		{"avg_contract_value", AvgContractValue(1000, 0)},
	}
	for _, tc := range cases {
		if tc.got != nil {
			t.Errorf("%s: expected nil on zero denominator, got %v", tc.name, *tc.got)
		}
	}
}

func TestRatioValues(t *testing.T) {
	if got := CPL(200, 50); got == nil || *got != 4 {
		t.Errorf("CPL(200, 50) = %v, want 4", got)
	}
	if got := CTR(5, 200); got == nil || *got != 2.5 {
		t.Errorf("CTR(5, 200) = %v, want 2.5", got)
	}
	if got := CPM(30, 10000); got == nil || *got != 3 {
		t.Errorf("CPM(30, 10000) = %v, want 3", got)
	}
	if got := ROAS(900, 300); got == nil || *got != 3 {
		t.Errorf("ROAS(900, 300) = %v, want 3", got)
	}
	if got := CVR(5, 100); got == nil || *got != 5 {
		t.Errorf("CVR(5, 100) = %v, want 5", got)
	}
}

func TestPctDiff(t *testing.T) {
	if got := PctDiff(150, 100); got == nil || *got != 50 {
		t.Errorf("PctDiff(150, 100) = %v, want 50", got)
	}
	if got := PctDiff(50, 100); got == nil || *got != -50 {
		t.Errorf("PctDiff(50, 100) = %v, want -50", got)
	}
	if got := PctDiff(0, 100); got == nil || *got != -100 {
		t.Errorf("PctDiff(0, 100) = %v, want -100", got)
	}
	// previous = 0 is always null, whether current is zero or not: a new
	// entity has no meaningful relative change.
	if got := PctDiff(0, 0); got != nil {
		t.Errorf("PctDiff(0, 0) = %v, want nil", *got)
	}
	if got := PctDiff(10, 0); got != nil {
		t.Errorf("PctDiff(10, 0) = %v, want nil", *got)
	}
}
