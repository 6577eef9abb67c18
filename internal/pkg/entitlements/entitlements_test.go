package entitlements

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "pro", want: PlanPro},
		{in: "enterprise", want: PlanEnterprise},
		{in: "ENTERPRISE", want: PlanEnterprise},
		{in: " pro ", want: PlanPro},
		{in: "none", want: PlanNone},
		{in: "premium", want: PlanNone},
		{in: "", want: PlanNone},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRank(t *testing.T) {
	if Rank(PlanNone) >= Rank(PlanPro) {
		t.Fatalf("expected pro to outrank none")
	}
	if Rank(PlanPro) >= Rank(PlanEnterprise) {
		t.Fatalf("expected enterprise to outrank pro")
	}
}

func TestAllowedDiagramTypes(t *testing.T) {
	m, f, a := AllowedDiagramTypes(PlanPro)
	if !m || !f || a {
		t.Fatalf("pro should allow methodology+flowchart only, got %v %v %v", m, f, a)
	}
	m, f, a = AllowedDiagramTypes(PlanEnterprise)
	if !m || !f || !a {
		t.Fatalf("enterprise should allow all diagram types")
	}
	m, f, a = AllowedDiagramTypes(PlanNone)
	if m || f || a {
		t.Fatalf("none should allow no diagram types")
	}
}

func TestMonthlyFigureLimit(t *testing.T) {
	if MonthlyFigureLimit(PlanNone) != 0 {
		t.Fatalf("none plan must not generate figures")
	}
	if MonthlyFigureLimit(PlanPro) >= MonthlyFigureLimit(PlanEnterprise) {
		t.Fatalf("enterprise limit should exceed pro limit")
	}
}
