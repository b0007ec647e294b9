package repository

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/ingredex/internal/domain/catalog"
	"github.com/okian/ingredex/internal/domain/model"
)

// recordDTO is the on-disk shape of an ingredient record, shared by the
// YAML seed file and the JSON columns of the SQLite store.
type recordDTO struct {
	Name                  string             `yaml:"name"`
	ScientificName        string             `yaml:"scientificName,omitempty"`
	Origin                string             `yaml:"origin,omitempty"`
	Purpose               []string           `yaml:"purpose,omitempty"`
	Aliases               []string           `yaml:"aliases,omitempty"`
	ENumbers              []string           `yaml:"eNumbers,omitempty"`
	BaseSafetyScore       *int               `yaml:"baseSafetyScore"`
	BaseSafetyExplanation string             `yaml:"baseSafetyExplanation,omitempty"`
	AgeConsiderations     ageDTO             `yaml:"ageConsiderations,omitempty"`
	HealthConditions      map[string]noteDTO `yaml:"healthConditions,omitempty"`
	Disclaimer            string             `yaml:"disclaimer,omitempty"`
	Regulatory            regulatoryDTO      `yaml:"regulatory,omitempty"`
}

type ageDTO struct {
	Children string `yaml:"children,omitempty"`
}

type noteDTO struct {
	Text   string `yaml:"text" json:"text"`
	Impact string `yaml:"impact,omitempty" json:"impact,omitempty"`
}

// UnmarshalYAML accepts either a bare string or a {text, impact} mapping.
func (n *noteDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		n.Text = node.Value
		n.Impact = ""
		return nil
	}
	type plain noteDTO
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*n = noteDTO(p)
	return nil
}

type adiDTO struct {
	Min    *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max    *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Unit   string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	Source string   `yaml:"source,omitempty" json:"source,omitempty"`
	Notes  string   `yaml:"notes,omitempty" json:"notes,omitempty"`
}

type permissionDTO struct {
	CategoryCode string `yaml:"categoryCode" json:"categoryCode"`
	CategoryName string `yaml:"categoryName,omitempty" json:"categoryName,omitempty"`
	MaxLevel     string `yaml:"maxLevel,omitempty" json:"maxLevel,omitempty"`
	UsageNote    string `yaml:"usageNote,omitempty" json:"usageNote,omitempty"`
}

type regulatoryDTO struct {
	FunctionalClass string          `yaml:"functionalClass,omitempty" json:"functionalClass,omitempty"`
	WhyUsed         string          `yaml:"whyUsed,omitempty" json:"whyUsed,omitempty"`
	CodexStatus     string          `yaml:"codexStatus,omitempty" json:"codexStatus,omitempty"`
	ADIStatus       string          `yaml:"adiStatus,omitempty" json:"adiStatus,omitempty"`
	ADI             *adiDTO         `yaml:"adi,omitempty" json:"adi,omitempty"`
	Permissions     []permissionDTO `yaml:"permissions,omitempty" json:"permissions,omitempty"`
}

func notesToModel(in map[string]noteDTO) (map[model.Condition]model.HealthNote, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[model.Condition]model.HealthNote, len(in))
	for k, n := range in {
		c, ok := model.ParseCondition(k)
		if !ok {
			return nil, fmt.Errorf("%w: unknown health condition %q", catalog.ErrInvalidRecord, k)
		}
		out[c] = model.HealthNote{Text: n.Text, Impact: model.NoteImpact(strings.ToLower(n.Impact))}
	}
	return out, nil
}

func notesFromModel(in map[model.Condition]model.HealthNote) map[string]noteDTO {
	out := make(map[string]noteDTO, len(in))
	for c, n := range in {
		out[string(c)] = noteDTO{Text: n.Text, Impact: string(n.Impact)}
	}
	return out
}

func (r regulatoryDTO) toModel() model.Regulatory {
	reg := model.Regulatory{
		FunctionalClass: r.FunctionalClass,
		WhyUsed:         r.WhyUsed,
		CodexStatus:     r.CodexStatus,
		ADIStatus:       r.ADIStatus,
	}
	if r.ADI != nil {
		reg.ADI = &model.ADI{
			MinMgPerKg: r.ADI.Min,
			MaxMgPerKg: r.ADI.Max,
			Unit:       r.ADI.Unit,
			Source:     r.ADI.Source,
			Notes:      r.ADI.Notes,
		}
	}
	for _, p := range r.Permissions {
		reg.Permissions = append(reg.Permissions, model.Permission(p))
	}
	return reg
}

func regulatoryFromModel(reg model.Regulatory) regulatoryDTO {
	r := regulatoryDTO{
		FunctionalClass: reg.FunctionalClass,
		WhyUsed:         reg.WhyUsed,
		CodexStatus:     reg.CodexStatus,
		ADIStatus:       reg.ADIStatus,
	}
	if reg.ADI != nil {
		r.ADI = &adiDTO{
			Min:    reg.ADI.MinMgPerKg,
			Max:    reg.ADI.MaxMgPerKg,
			Unit:   reg.ADI.Unit,
			Source: reg.ADI.Source,
			Notes:  reg.ADI.Notes,
		}
	}
	for _, p := range reg.Permissions {
		r.Permissions = append(r.Permissions, permissionDTO(p))
	}
	return r
}

func (d recordDTO) toModel() (model.IngredientRecord, error) {
	if d.BaseSafetyScore == nil {
		return model.IngredientRecord{}, fmt.Errorf("%w: %q has no base safety score", catalog.ErrInvalidRecord, d.Name)
	}
	notes, err := notesToModel(d.HealthConditions)
	if err != nil {
		return model.IngredientRecord{}, fmt.Errorf("%q: %w", d.Name, err)
	}
	return model.IngredientRecord{
		Name:                  strings.TrimSpace(d.Name),
		ScientificName:        d.ScientificName,
		Origin:                model.ParseOrigin(d.Origin),
		Purpose:               d.Purpose,
		Aliases:               d.Aliases,
		ENumbers:              d.ENumbers,
		BaseSafetyScore:       *d.BaseSafetyScore,
		BaseSafetyExplanation: d.BaseSafetyExplanation,
		AgeConsiderations:     model.AgeConsiderations{Children: d.AgeConsiderations.Children},
		HealthConditionNotes:  notes,
		Disclaimer:            d.Disclaimer,
		Regulatory:            d.Regulatory.toModel(),
	}, nil
}

func recordFromModel(r model.IngredientRecord) recordDTO {
	score := r.BaseSafetyScore
	return recordDTO{
		Name:                  r.Name,
		ScientificName:        r.ScientificName,
		Origin:                string(r.Origin),
		Purpose:               r.Purpose,
		Aliases:               r.Aliases,
		ENumbers:              r.ENumbers,
		BaseSafetyScore:       &score,
		BaseSafetyExplanation: r.BaseSafetyExplanation,
		AgeConsiderations:     ageDTO{Children: r.AgeConsiderations.Children},
		HealthConditions:      notesFromModel(r.HealthConditionNotes),
		Disclaimer:            r.Disclaimer,
		Regulatory:            regulatoryFromModel(r.Regulatory),
	}
}
