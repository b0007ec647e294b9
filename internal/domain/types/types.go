// Package types contains the JSON views returned by the HTTP API.
package types

import "github.com/okian/ingredex/internal/domain/model"

// Ingredient is a catalog record as shown to clients. SafetyScore is the
// base score unless the record was scored for a request context.
type Ingredient struct {
	Name               string             `json:"name"`
	ScientificName     string             `json:"scientificName,omitempty"`
	Origin             string             `json:"origin"`
	Purpose            []string           `json:"purpose"`
	Aliases            []string           `json:"aliases"`
	ENumbers           []string           `json:"eNumbers"`
	SafetyScore        int                `json:"safetyScore"`
	SafetyExplanation  string             `json:"safetyExplanation"`
	AgeConsiderations  *AgeConsiderations `json:"ageConsiderations,omitempty"`
	HealthConditions   map[string]string  `json:"healthConditions,omitempty"`
	Disclaimer         string             `json:"disclaimer,omitempty"`
	EducationalContext string             `json:"educationalContext,omitempty"`
	Regulatory         *Regulatory        `json:"regulatory,omitempty"`
}

// AgeConsiderations holds age-specific notes.
type AgeConsiderations struct {
	Children string `json:"children,omitempty"`
}

// ADI is an acceptable daily intake range.
type ADI struct {
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
	Unit   string   `json:"unit,omitempty"`
	Source string   `json:"source,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}

// Permission is a food category where the ingredient may be used.
type Permission struct {
	CategoryCode string `json:"categoryCode"`
	CategoryName string `json:"categoryName,omitempty"`
	MaxLevel     string `json:"maxLevel,omitempty"`
	UsageNote    string `json:"usageNote,omitempty"`
}

// Regulatory is descriptive compliance metadata.
type Regulatory struct {
	FunctionalClass string       `json:"functionalClass,omitempty"`
	WhyUsed         string       `json:"whyUsed,omitempty"`
	CodexStatus     string       `json:"codexStatus,omitempty"`
	ADIStatus       string       `json:"adiStatus,omitempty"`
	ADI             *ADI         `json:"adi,omitempty"`
	Permissions     []Permission `json:"permissions,omitempty"`
}

// ScanResponse is the body of a label scan.
type ScanResponse struct {
	Success      bool         `json:"success"`
	OriginalText []string     `json:"originalText"`
	Ingredients  []Ingredient `json:"ingredients"`
	Message      string       `json:"message"`
	Error        string       `json:"error,omitempty"`
}

// MatchesResponse lists the catalog names a query may refer to.
type MatchesResponse struct {
	Query   string   `json:"query"`
	Matches []string `json:"matches"`
}

// HealthResponse is the liveness body.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FromRecord builds the view of rec with its base score.
func FromRecord(rec model.IngredientRecord) Ingredient {
	in := Ingredient{
		Name:              rec.Name,
		ScientificName:    rec.ScientificName,
		Origin:            string(rec.Origin),
		Purpose:           nonNil(rec.Purpose),
		Aliases:           nonNil(rec.Aliases),
		ENumbers:          nonNil(rec.ENumbers),
		SafetyScore:       rec.BaseSafetyScore,
		SafetyExplanation: rec.BaseSafetyExplanation,
		Disclaimer:        rec.Disclaimer,
	}
	if rec.AgeConsiderations.Children != "" {
		in.AgeConsiderations = &AgeConsiderations{Children: rec.AgeConsiderations.Children}
	}
	if len(rec.HealthConditionNotes) > 0 {
		in.HealthConditions = make(map[string]string, len(rec.HealthConditionNotes))
		for c, n := range rec.HealthConditionNotes {
			in.HealthConditions[string(c)] = n.Text
		}
	}
	in.Regulatory = regulatory(rec.Regulatory)
	return in
}

// FromScored builds the view of a scored record.
func FromScored(s model.ScoredIngredient) Ingredient {
	in := FromRecord(s.Record)
	in.SafetyScore = s.Score
	in.SafetyExplanation = s.Explanation
	in.EducationalContext = s.Education
	return in
}

func regulatory(r model.Regulatory) *Regulatory {
	if r.FunctionalClass == "" && r.WhyUsed == "" && r.CodexStatus == "" &&
		r.ADIStatus == "" && r.ADI == nil && len(r.Permissions) == 0 {
		return nil
	}
	out := &Regulatory{
		FunctionalClass: r.FunctionalClass,
		WhyUsed:         r.WhyUsed,
		CodexStatus:     r.CodexStatus,
		ADIStatus:       r.ADIStatus,
	}
	if r.ADI != nil {
		out.ADI = &ADI{
			Min:    r.ADI.MinMgPerKg,
			Max:    r.ADI.MaxMgPerKg,
			Unit:   r.ADI.Unit,
			Source: r.ADI.Source,
			Notes:  r.ADI.Notes,
		}
	}
	for _, p := range r.Permissions {
		out.Permissions = append(out.Permissions, Permission(p))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
