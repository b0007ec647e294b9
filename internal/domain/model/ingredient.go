// Package model contains domain models passed between layers.
package model

import (
	"maps"
	"slices"
	"strings"
)

// Origin describes where an ingredient comes from.
type Origin string

// Known origins.
const (
	OriginPlantBased   Origin = "plant-based"
	OriginAnimalBased  Origin = "animal-based"
	OriginSynthetic    Origin = "synthetic"
	OriginFermentation Origin = "fermentation"
	OriginUnknown      Origin = "unknown"
)

// ParseOrigin maps free text such as "Plant-based" onto an Origin.
// Anything unrecognized is OriginUnknown.
func ParseOrigin(s string) Origin {
	switch o := Origin(strings.ToLower(strings.TrimSpace(s))); o {
	case OriginPlantBased, OriginAnimalBased, OriginSynthetic, OriginFermentation:
		return o
	default:
		return OriginUnknown
	}
}

// Condition is a recognized health condition key.
type Condition string

// Recognized health conditions.
const (
	ConditionDiabetes      Condition = "diabetes"
	ConditionBloodPressure Condition = "blood-pressure"
	ConditionDigestive     Condition = "digestive"
)

// Conditions lists the recognized conditions in scoring order.
var Conditions = []Condition{ConditionDiabetes, ConditionBloodPressure, ConditionDigestive}

// ParseCondition accepts the canonical key; "bloodPressure" is tolerated
// because older seed data used it.
func ParseCondition(s string) (Condition, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diabetes":
		return ConditionDiabetes, true
	case "blood-pressure", "bloodpressure", "blood_pressure":
		return ConditionBloodPressure, true
	case "digestive":
		return ConditionDigestive, true
	}
	return "", false
}

// NoteImpact says whether a health note lowers the score.
type NoteImpact string

// Note impacts. The empty value behaves as ImpactConcern.
const (
	ImpactConcern   NoteImpact = "concern"
	ImpactFavorable NoteImpact = "favorable"
)

// HealthNote is free text shown to people managing a condition.
type HealthNote struct {
	Text   string
	Impact NoteImpact
}

// Lowers reports whether the note should cost a point.
func (n HealthNote) Lowers() bool {
	return n.Impact != ImpactFavorable
}

// AgeConsiderations holds age-specific notes.
type AgeConsiderations struct {
	Children string
}

// ADI is an acceptable daily intake range. Descriptive only.
type ADI struct {
	MinMgPerKg *float64
	MaxMgPerKg *float64
	Unit       string // mg/kg bw, GMP, ...
	Source     string
	Notes      string
}

// Permission describes where an additive may be used and at what level.
type Permission struct {
	CategoryCode string
	CategoryName string
	MaxLevel     string
	UsageNote    string
}

// Regulatory carries compliance metadata. Never used for scoring.
type Regulatory struct {
	FunctionalClass string
	WhyUsed         string
	CodexStatus     string // permitted | permitted_with_limits | not_permitted
	ADIStatus       string // specified | not_specified
	ADI             *ADI
	Permissions     []Permission
}

// IngredientRecord is the canonical catalog entity. Storage adapters map
// into and out of this shape at their boundary.
type IngredientRecord struct {
	Name                  string
	ScientificName        string
	Origin                Origin
	Purpose               []string
	Aliases               []string
	ENumbers              []string
	BaseSafetyScore       int
	BaseSafetyExplanation string
	AgeConsiderations     AgeConsiderations
	HealthConditionNotes  map[Condition]HealthNote
	Disclaimer            string
	Regulatory            Regulatory
}

// HealthNote returns the note for c, if any.
func (r IngredientRecord) HealthNote(c Condition) (HealthNote, bool) {
	n, ok := r.HealthConditionNotes[c]
	if !ok || strings.TrimSpace(n.Text) == "" {
		return HealthNote{}, false
	}
	return n, true
}

// Clone returns a deep copy so callers can never mutate catalog state.
func (r IngredientRecord) Clone() IngredientRecord {
	c := r
	c.Purpose = slices.Clone(r.Purpose)
	c.Aliases = slices.Clone(r.Aliases)
	c.ENumbers = slices.Clone(r.ENumbers)
	if r.HealthConditionNotes != nil {
		c.HealthConditionNotes = maps.Clone(r.HealthConditionNotes)
	}
	c.Regulatory.Permissions = slices.Clone(r.Regulatory.Permissions)
	if r.Regulatory.ADI != nil {
		adi := *r.Regulatory.ADI
		c.Regulatory.ADI = &adi
	}
	return c
}

// ScoredIngredient is a record with its context-adjusted score. Derived per request.
type ScoredIngredient struct {
	Record      IngredientRecord
	Score       int
	Explanation string
	Education   string
}

// ScanResult is the outcome of a label scan. OriginalText holds the raw
// strings read off the label; Ingredients holds the matched records in the
// order they were first seen.
type ScanResult struct {
	OriginalText []string
	Ingredients  []ScoredIngredient
}
