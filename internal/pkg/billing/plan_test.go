package billing

import (
	"testing"

	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
)

func testCatalog() *Catalog {
	return NewCatalog(&config.AppConfig{
		StripePricePro:        "price_pro_123",
		StripePriceEnterprise: "price_ent_456",
	})
}

func TestCatalogFindByID(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		in     string
		want   entitlements.Plan
		wantOK bool
	}{
		{in: "pro", want: entitlements.PlanPro, wantOK: true},
		{in: "PRO", want: entitlements.PlanPro, wantOK: true},
		{in: "enterprise", want: entitlements.PlanEnterprise, wantOK: true},
		{in: "none", wantOK: false},
		{in: "platinum", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		plan, ok := catalog.FindByID(tt.in)
		if ok != tt.wantOK {
			t.Fatalf("FindByID(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
		}
		if ok && plan.ID != tt.want {
			t.Fatalf("FindByID(%q) = %q, want %q", tt.in, plan.ID, tt.want)
		}
	}
}

func TestCatalogFindByPriceID(t *testing.T) {
	catalog := testCatalog()

	if plan, ok := catalog.FindByPriceID("price_pro_123"); !ok || plan.ID != entitlements.PlanPro {
		t.Fatalf("expected price_pro_123 to resolve to pro, got %v %v", plan.ID, ok)
	}
	if plan, ok := catalog.FindByPriceID("price_ent_456"); !ok || plan.ID != entitlements.PlanEnterprise {
		t.Fatalf("expected price_ent_456 to resolve to enterprise, got %v %v", plan.ID, ok)
	}
	if _, ok := catalog.FindByPriceID("price_unknown"); ok {
		t.Fatalf("expected unknown price id to not resolve")
	}
	if _, ok := catalog.FindByPriceID(""); ok {
		t.Fatalf("expected empty price id to not resolve")
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	if !isEntitlingStatus("active") {
		t.Fatalf("expected status active to be entitling")
	}
	if !isEntitlingStatus(" Active ") {
		t.Fatalf("expected status to be trimmed and case-folded")
	}
	// Only exactly "active" grants access; trial and grace states do not.
	for _, status := range []string{"trialing", "past_due", "canceled", "incomplete", "unpaid", ""} {
		if isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}

func TestCatalogPlansOrder(t *testing.T) {
	plans := testCatalog().Plans()
	if len(plans) != 2 {
		t.Fatalf("expected 2 catalog plans, got %d", len(plans))
	}
	if plans[0].ID != entitlements.PlanPro || plans[1].ID != entitlements.PlanEnterprise {
		t.Fatalf("unexpected plan order: %v, %v", plans[0].ID, plans[1].ID)
	}
	for _, p := range plans {
		if p.StripePriceID == "" {
			t.Fatalf("plan %s has no price id", p.ID)
		}
		if len(p.Features) == 0 {
			t.Fatalf("plan %s has no feature list", p.ID)
		}
	}
}
