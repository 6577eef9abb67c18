package entitlements

import "strings"

type Plan string

const (
	PlanNone       Plan = "none"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Normalize maps arbitrary plan strings onto the known plan set.
// Unknown values fall back to PlanNone.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPro):
		return PlanPro
	case string(PlanEnterprise):
		return PlanEnterprise
	default:
		return PlanNone
	}
}

// Rank orders plans for comparisons; higher is better.
func Rank(plan Plan) int {
	switch plan {
	case PlanEnterprise:
		return 2
	case PlanPro:
		return 1
	default:
		return 0
	}
}

// AllowedDiagramTypes returns which diagram types a plan may generate.
// Pro covers the standard set, enterprise adds architecture diagrams.
func AllowedDiagramTypes(plan Plan) (methodology, flowchart, architecture bool) {
	switch plan {
	case PlanEnterprise:
		return true, true, true
	case PlanPro:
		return true, true, false
	default:
		return false, false, false
	}
}

// MonthlyFigureLimit returns the number of figures a plan may generate per
// month. 0 means no generation allowed.
func MonthlyFigureLimit(plan Plan) int {
	switch plan {
	case PlanEnterprise:
		return 500
	case PlanPro:
		return 50
	default:
		return 0
	}
}
