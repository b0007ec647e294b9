// Package scoring adjusts an ingredient's base safety score for the person
// asking. Scoring is pure and deterministic.
package scoring

import (
	"strings"

	"github.com/okian/ingredex/internal/domain/model"
)

// Default rule parameters.
const (
	defaultChildPenalty        = 2
	defaultDailyAbove          = 5
	defaultOccasionalBelow     = 8
	minScoreValue              = 1
	maxScoreValue              = 10
	dailyNote                  = " Note: While generally safe, frequent daily consumption may not be ideal for optimal health."
	occasionalNote             = " Note: Occasional consumption as part of a balanced diet is generally not concerning."
	childNotePrefix            = " Note for children: "
	healthConsiderationsPrefix = " Health considerations: "
)

var conditionLabels = map[model.Condition]string{
	model.ConditionDiabetes:      "Individuals managing blood sugar",
	model.ConditionBloodPressure: "Individuals managing blood pressure",
	model.ConditionDigestive:     "Individuals with digestive sensitivity",
}

// Option applies a configuration option to the RuleScorer.
type Option func(*RuleScorer)

// WithChildPenalty sets how many points the children note costs.
func WithChildPenalty(points int) Option {
	return func(s *RuleScorer) {
		if points >= 0 {
			s.childPenalty = points
		}
	}
}

// WithFrequencyThresholds sets the score above which daily consumption costs
// a point and the score below which occasional consumption earns one.
func WithFrequencyThresholds(dailyAbove, occasionalBelow int) Option {
	return func(s *RuleScorer) {
		if dailyAbove >= minScoreValue && occasionalBelow <= maxScoreValue {
			s.dailyAbove = dailyAbove
			s.occasionalBelow = occasionalBelow
		}
	}
}

// Result contains the adjusted score and its explanation.
type Result struct {
	Score       int
	Explanation string
}

// Scorer computes a contextual score for a record.
type Scorer interface {
	Score(rec model.IngredientRecord, rc *model.RequestContext) Result
	Educate(rec model.IngredientRecord, rc *model.RequestContext) string
}

// RuleScorer applies the age, health condition and frequency rules in that order.
type RuleScorer struct {
	childPenalty    int
	dailyAbove      int
	occasionalBelow int
}

// NewRuleScorer creates a scorer with the default rules.
func NewRuleScorer(opts ...Option) *RuleScorer {
	s := &RuleScorer{
		childPenalty:    defaultChildPenalty,
		dailyAbove:      defaultDailyAbove,
		occasionalBelow: defaultOccasionalBelow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the record's base score adjusted for rc. A nil or empty
// context returns the baseline unchanged.
func (s *RuleScorer) Score(rec model.IngredientRecord, rc *model.RequestContext) Result {
	score := rec.BaseSafetyScore
	var b strings.Builder
	b.WriteString(rec.BaseSafetyExplanation)

	if rc == nil || rc.IsZero() {
		return Result{Score: clamp(score), Explanation: b.String()}
	}

	if rc.AgeGroup == model.AgeChild && rec.AgeConsiderations.Children != "" {
		score = max(minScoreValue, score-s.childPenalty)
		b.WriteString(childNotePrefix)
		b.WriteString(rec.AgeConsiderations.Children)
	}

	var notes []string
	for _, c := range model.Conditions {
		if !rc.Has(c) {
			continue
		}
		note, ok := rec.HealthNote(c)
		if !ok {
			continue
		}
		notes = append(notes, note.Text)
		if note.Lowers() {
			score = max(minScoreValue, score-1)
		}
	}
	if len(notes) > 0 {
		b.WriteString(healthConsiderationsPrefix)
		b.WriteString(strings.Join(notes, " "))
	}

	switch {
	case rc.ConsumptionFrequency == model.FrequencyDaily && score > s.dailyAbove:
		score--
		b.WriteString(dailyNote)
	case rc.ConsumptionFrequency == model.FrequencyOccasional && score < s.occasionalBelow:
		score = min(maxScoreValue, score+1)
		b.WriteString(occasionalNote)
	}

	return Result{Score: clamp(score), Explanation: b.String()}
}

// Educate builds a plain-language summary of the record. Child and health
// notes are included only when rc asks for them.
func (s *RuleScorer) Educate(rec model.IngredientRecord, rc *model.RequestContext) string {
	var b strings.Builder
	b.WriteString("About " + rec.Name + ": ")

	origin := rec.Origin
	if origin == "" {
		origin = model.OriginUnknown
	}
	b.WriteString("This ingredient is " + strings.ToLower(string(origin)) + ". ")

	if len(rec.Purpose) > 0 {
		b.WriteString("It is commonly used as: " + strings.Join(rec.Purpose, ", ") + ". ")
	}

	if aka := alsoKnownAs(rec); len(aka) > 0 {
		b.WriteString("It may also be listed as: " + strings.Join(aka, ", ") + ". ")
	}

	if rc != nil {
		if rc.AgeGroup == model.AgeChild && rec.AgeConsiderations.Children != "" {
			b.WriteString("For children: " + rec.AgeConsiderations.Children + " ")
		}
		var parts []string
		for _, c := range model.Conditions {
			if !rc.Has(c) {
				continue
			}
			if note, ok := rec.HealthNote(c); ok {
				parts = append(parts, conditionLabels[c]+": "+note.Text)
			}
		}
		if len(parts) > 0 {
			b.WriteString("Health considerations: " + strings.Join(parts, " "))
		}
	}

	return strings.TrimSpace(b.String())
}

// alsoKnownAs lists aliases then E-numbers, skipping the name and repeats.
func alsoKnownAs(rec model.IngredientRecord) []string {
	seen := map[string]struct{}{strings.ToLower(rec.Name): {}}
	var out []string
	for _, list := range [][]string{rec.Aliases, rec.ENumbers} {
		for _, a := range list {
			k := strings.ToLower(strings.TrimSpace(a))
			if _, dup := seen[k]; dup || k == "" {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func clamp(score int) int {
	return max(minScoreValue, min(maxScoreValue, score))
}
