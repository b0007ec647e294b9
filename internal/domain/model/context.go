package model

import "slices"

// AgeGroup of the person asking.
type AgeGroup string

// Age groups.
const (
	AgeChild   AgeGroup = "child"
	AgeAdult   AgeGroup = "adult"
	AgeElderly AgeGroup = "elderly"
)

// Frequency is how often the person consumes the product.
type Frequency string

// Consumption frequencies.
const (
	FrequencyDaily      Frequency = "daily"
	FrequencyWeekly     Frequency = "weekly"
	FrequencyOccasional Frequency = "occasional"
)

// RequestContext is the optional per-request personalisation. Never persisted.
type RequestContext struct {
	AgeGroup             AgeGroup
	HealthConditions     []Condition
	ConsumptionFrequency Frequency
}

// IsZero reports whether no context field is set.
func (c RequestContext) IsZero() bool {
	return c.AgeGroup == "" && len(c.HealthConditions) == 0 && c.ConsumptionFrequency == ""
}

// Has reports whether condition was flagged.
func (c RequestContext) Has(condition Condition) bool {
	return slices.Contains(c.HealthConditions, condition)
}
