package enums

import "fmt"

// PlanType is the tenant subscription tier.
type PlanType string

const (
	PlanTypeFree         PlanType = "free"
	PlanTypeStarter      PlanType = "starter"
	PlanTypeProfessional PlanType = "professional"
	PlanTypeEnterprise   PlanType = "enterprise"
)

var validPlanTypes = []PlanType{
	PlanTypeFree,
	PlanTypeStarter,
	PlanTypeProfessional,
	PlanTypeEnterprise,
}

func (p PlanType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PlanType) IsValid() bool {
	for _, candidate := range validPlanTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanType converts raw input into a PlanType.
func ParsePlanType(value string) (PlanType, error) {
	for _, candidate := range validPlanTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan type %q", value)
}

// PlanLimits describes the allowances attached to a plan.
type PlanLimits struct {
	Name                 string
	MonthlyReleasesLimit int
	Credits              int
}

var planLimits = map[PlanType]PlanLimits{
	PlanTypeFree:         {Name: "Free", MonthlyReleasesLimit: 3, Credits: 100},
	PlanTypeStarter:      {Name: "Starter", MonthlyReleasesLimit: 10, Credits: 500},
	PlanTypeProfessional: {Name: "Professional", MonthlyReleasesLimit: 999, Credits: 1000},
	PlanTypeEnterprise:   {Name: "Enterprise", MonthlyReleasesLimit: 9999, Credits: 99999},
}

// Limits returns the plan allowances, defaulting to the free tier.
func (p PlanType) Limits() PlanLimits {
	if limits, ok := planLimits[p]; ok {
		return limits
	}
	return planLimits[PlanTypeFree]
}
