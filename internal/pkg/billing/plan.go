package billing

import (
	"fmt"
	"strings"

	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
)

// Plan is one static catalog entry shown on the paywall and mapped to a
// Stripe price. The catalog is built once at startup and never mutated.
type Plan struct {
	ID            entitlements.Plan
	DisplayName   string
	MonthlyPrice  int64 // cents
	Currency      string
	Features      []string
	StripePriceID string
}

// Catalog holds the immutable plan catalog.
type Catalog struct {
	plans []Plan
}

// NewCatalog builds the plan catalog from the validated configuration.
func NewCatalog(cfg *config.AppConfig) *Catalog {
	return &Catalog{
		plans: []Plan{
			{
				ID:           entitlements.PlanPro,
				DisplayName:  "Pro",
				MonthlyPrice: 1900,
				Currency:     "eur",
				Features: []string{
					"Methodik- und Flussdiagramme",
					"50 Diagramme pro Monat",
					"PNG-Download in Publikationsqualität",
				},
				StripePriceID: cfg.StripePricePro,
			},
			{
				ID:           entitlements.PlanEnterprise,
				DisplayName:  "Enterprise",
				MonthlyPrice: 4900,
				Currency:     "eur",
				Features: []string{
					"Alle Diagrammtypen inkl. Architektur",
					"500 Diagramme pro Monat",
					"PNG-Download in Publikationsqualität",
					"S3-Archiv für generierte Diagramme",
				},
				StripePriceID: cfg.StripePriceEnterprise,
			},
		},
	}
}

// PriceFormatted renders the monthly price for display, e.g. "19 €".
func (p Plan) PriceFormatted() string {
	euros := p.MonthlyPrice / 100
	if cents := p.MonthlyPrice % 100; cents != 0 {
		return fmt.Sprintf("%d,%02d €", euros, cents)
	}
	return fmt.Sprintf("%d €", euros)
}

// Plans returns the catalog entries in display order.
func (c *Catalog) Plans() []Plan {
	return c.plans
}

// FindByID looks up a catalog plan by its id.
func (c *Catalog) FindByID(id string) (Plan, bool) {
	normalized := entitlements.Normalize(id)
	for _, p := range c.plans {
		if p.ID == normalized {
			return p, true
		}
	}
	return Plan{}, false
}

// FindByPriceID resolves the plan a Stripe price id belongs to.
func (c *Catalog) FindByPriceID(priceID string) (Plan, bool) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return Plan{}, false
	}
	for _, p := range c.plans {
		if p.StripePriceID == priceID {
			return p, true
		}
	}
	return Plan{}, false
}

// isEntitlingStatus reports whether a provider subscription status grants
// access. Access requires exactly "active"; trialing or past_due states do
// not unlock the workspace.
func isEntitlingStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == "active"
}
