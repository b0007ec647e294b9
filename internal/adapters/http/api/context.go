package api

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/ingredex/internal/domain/model"
)

// Query parameter names for the optional personalisation.
const (
	paramAgeGroup             = "ageGroup"
	paramHealthConditions     = "healthConditions"
	paramConsumptionFrequency = "consumptionFrequency"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("condition", func(fl validator.FieldLevel) bool {
		_, ok := model.ParseCondition(fl.Field().String())
		return ok
	})
	return v
}

type contextQuery struct {
	AgeGroup             string   `validate:"omitempty,oneof=child adult elderly"`
	HealthConditions     []string `validate:"dive,condition"`
	ConsumptionFrequency string   `validate:"omitempty,oneof=daily weekly occasional"`
}

// parseContext reads the personalisation parameters from q. Conditions may
// be repeated, comma separated, or sent as healthConditions[]. A nil context
// is returned when nothing was supplied.
func parseContext(q url.Values) (*model.RequestContext, error) {
	cq := contextQuery{
		AgeGroup:             strings.ToLower(strings.TrimSpace(q.Get(paramAgeGroup))),
		ConsumptionFrequency: strings.ToLower(strings.TrimSpace(q.Get(paramConsumptionFrequency))),
	}
	for _, key := range []string{paramHealthConditions, paramHealthConditions + "[]"} {
		for _, v := range q[key] {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					cq.HealthConditions = append(cq.HealthConditions, part)
				}
			}
		}
	}

	if err := validate.Struct(cq); err != nil {
		return nil, describe(err)
	}

	rc := &model.RequestContext{
		AgeGroup:             model.AgeGroup(cq.AgeGroup),
		ConsumptionFrequency: model.Frequency(cq.ConsumptionFrequency),
	}
	for _, s := range cq.HealthConditions {
		c, _ := model.ParseCondition(s)
		if !rc.Has(c) {
			rc.HealthConditions = append(rc.HealthConditions, c)
		}
	}
	if rc.IsZero() {
		return nil, nil
	}
	return rc, nil
}

// describe turns validator output into a message naming the offending parameter.
func describe(err error) error {
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the concrete type
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	var name string
	switch fe.StructField() {
	case "AgeGroup":
		name = paramAgeGroup
	case "ConsumptionFrequency":
		name = paramConsumptionFrequency
	default:
		name = paramHealthConditions
	}
	return fmt.Errorf("invalid %s value %q", name, fmt.Sprint(fe.Value()))
}
