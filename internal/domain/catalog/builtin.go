package catalog

import "github.com/okian/ingredex/internal/domain/model"

const educationalDisclaimer = "Information provided for educational purposes only. Not intended as medical advice."

func f(v float64) *float64 { return &v }

// Builtin returns the curated reference records shipped with the service.
func Builtin() []model.IngredientRecord {
	return []model.IngredientRecord{
		{
			Name:                  "Sugar",
			ScientificName:        "Sucrose",
			Origin:                model.OriginPlantBased,
			Purpose:               []string{"Sweetener", "Preservative", "Texture enhancer"},
			Aliases:               []string{"sucrose", "table sugar", "cane sugar", "white sugar", "granulated sugar"},
			ENumbers:              []string{"E320", "E321"},
			BaseSafetyScore:       4,
			BaseSafetyExplanation: "High consumption of added sugars is linked to increased risk of obesity, type 2 diabetes, and dental caries. The American Heart Association recommends limiting added sugars to no more than 6 teaspoons per day for women and 9 teaspoons for men.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Added sugars should be limited in children's diets. The American Academy of Pediatrics recommends avoiding added sugars in children under 2 years of age.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionDiabetes:      {Text: "Individuals managing blood sugar levels should consume products containing sugar cautiously as it can cause rapid increases in blood glucose."},
				model.ConditionBloodPressure: {Text: "High sugar intake may contribute to weight gain, which can affect blood pressure management."},
			},
			Disclaimer: educationalDisclaimer,
			Regulatory: model.Regulatory{
				FunctionalClass: "Sweetener",
				WhyUsed:         "Provides sweetness and enhances flavor",
				CodexStatus:     "permitted_with_limits",
				ADIStatus:       "specified",
			},
		},
		{
			Name:                  "High Fructose Corn Syrup",
			ScientificName:        "Glucose-Fructose",
			Origin:                model.OriginSynthetic,
			Purpose:               []string{"Sweetener", "Preservative", "Texture enhancer"},
			Aliases:               []string{"HFCS", "glucose-fructose syrup", "corn sugar"},
			ENumbers:              []string{"E967"},
			BaseSafetyScore:       3,
			BaseSafetyExplanation: "Similar to regular sugar but may have different metabolic effects. Some studies suggest potential links to obesity and metabolic syndrome when consumed in excess.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Should be limited in children's diets due to potential effects on developing metabolism and preference for sweet tastes.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionDiabetes:  {Text: "Can cause rapid increases in blood glucose levels. Individuals managing blood sugar should consume cautiously."},
				model.ConditionDigestive: {Text: "Some individuals may experience digestive discomfort with excessive consumption."},
			},
			Disclaimer: educationalDisclaimer,
			Regulatory: model.Regulatory{
				FunctionalClass: "Sweetener",
				WhyUsed:         "Provides sweetness and extends shelf life",
				CodexStatus:     "permitted_with_limits",
				ADIStatus:       "specified",
			},
		},
		{
			Name:                  "Aspartame",
			Origin:                model.OriginSynthetic,
			Purpose:               []string{"Artificial sweetener", "Calorie reducer"},
			Aliases:               []string{"NutraSweet", "Equal", "AminoSweet"},
			ENumbers:              []string{"E951"},
			BaseSafetyScore:       6,
			BaseSafetyExplanation: "An artificial sweetener that is approximately 200 times sweeter than sugar. Approved by regulatory agencies but should be consumed in moderation. People with phenylketonuria (PKU) must avoid aspartame.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Artificial sweeteners are not recommended for regular consumption by children as they may affect taste preferences and developing metabolism.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionDiabetes: {
					Text:   "Does not raise blood glucose levels, making it suitable for those managing diabetes.",
					Impact: model.ImpactFavorable,
				},
			},
			Disclaimer: "Information provided for educational purposes only. Not intended as medical advice. People with PKU must avoid aspartame.",
			Regulatory: model.Regulatory{
				FunctionalClass: "Sweetener",
				WhyUsed:         "Provides intense sweetness without calories",
				CodexStatus:     "permitted_with_limits",
				ADIStatus:       "specified",
			},
		},
		{
			Name:                  "Sodium Benzoate",
			Origin:                model.OriginSynthetic,
			Purpose:               []string{"Preservative", "Antimicrobial agent"},
			Aliases:               []string{"benzoic acid sodium salt"},
			ENumbers:              []string{"E211"},
			BaseSafetyScore:       7,
			BaseSafetyExplanation: "Common preservative effective against bacteria, yeasts, and molds. Generally recognized as safe by the FDA when used within approved limits.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Safe when used within regulatory limits, but frequent consumption of products with preservatives should be minimized in children's diets.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionDigestive: {Text: "In sensitive individuals, may cause mild digestive upset."},
			},
			Disclaimer: educationalDisclaimer,
			Regulatory: model.Regulatory{
				FunctionalClass: "Preservative",
				WhyUsed:         "Prevents microbial growth and extends shelf life",
				CodexStatus:     "permitted_with_limits",
				ADIStatus:       "specified",
				Permissions: []model.Permission{
					{CategoryCode: "14.1.4", CategoryName: "Water-based flavoured drinks", MaxLevel: "150 mg/kg", UsageNote: "Preservative in beverages"},
				},
			},
		},
		{
			Name:                  "Tartrazine",
			Origin:                model.OriginSynthetic,
			Purpose:               []string{"Food coloring", "Yellow colorant"},
			Aliases:               []string{"FD&C Yellow No. 5", "E102"},
			ENumbers:              []string{"E102"},
			BaseSafetyScore:       5,
			BaseSafetyExplanation: "Synthetic yellow food coloring. May cause allergic reactions in sensitive individuals and hyperactivity in some children.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Should be limited in children's diets, especially those with known sensitivities or hyperactivity concerns.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionDigestive: {Text: "May cause digestive upset in sensitive individuals."},
			},
			Disclaimer: educationalDisclaimer,
			Regulatory: model.Regulatory{
				FunctionalClass: "Colour",
				WhyUsed:         "Provides lemon-yellow colour",
				CodexStatus:     "permitted_with_limits",
				ADIStatus:       "specified",
				ADI:             &model.ADI{MinMgPerKg: f(0), MaxMgPerKg: f(7.5), Unit: "mg/kg bw", Source: "JECFA / Codex", Notes: "Numerical ADI"},
				Permissions: []model.Permission{
					{CategoryCode: "05.2", CategoryName: "Confectionery", MaxLevel: "300 mg/kg", UsageNote: "Colour in confectionery"},
				},
			},
		},
		{
			Name:                  "Caffeine",
			ScientificName:        "1,3,7-Trimethylxanthine",
			Origin:                model.OriginPlantBased,
			Purpose:               []string{"Stimulant", "Flavor enhancer"},
			Aliases:               []string{"1,3,7-Trimethylxanthine", "Coffeeine"},
			BaseSafetyScore:       7,
			BaseSafetyExplanation: "Natural stimulant that can enhance alertness. Safe in moderate amounts but excessive intake can cause anxiety, sleep issues, and other symptoms.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Should be limited in children's diets. The American Academy of Pediatrics discourages caffeine consumption in children.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionBloodPressure: {Text: "May cause temporary increases in blood pressure in sensitive individuals."},
			},
			Disclaimer: educationalDisclaimer,
			Regulatory: model.Regulatory{
				FunctionalClass: "Stimulant",
				WhyUsed:         "Provides stimulant effects and enhances alertness",
				CodexStatus:     "permitted_with_limits",
				ADIStatus:       "specified",
			},
		},
		{
			Name:                  "Monosodium Glutamate",
			ScientificName:        "Sodium glutamate",
			Origin:                model.OriginSynthetic,
			Purpose:               []string{"Flavor enhancer", "Umami taste"},
			Aliases:               []string{"MSG", "AJI-NO-MOTO"},
			ENumbers:              []string{"E621"},
			BaseSafetyScore:       8,
			BaseSafetyExplanation: "Flavor enhancer that provides umami taste. Extensively studied and considered safe by major health authorities when consumed in normal amounts.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Safe for children when used in normal culinary amounts.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionDigestive: {Text: "Some individuals may be sensitive to MSG and experience mild symptoms."},
			},
			Disclaimer: educationalDisclaimer,
			Regulatory: model.Regulatory{
				FunctionalClass: "Flavor enhancer",
				WhyUsed:         "Provides umami taste and enhances flavor",
				CodexStatus:     "permitted",
				ADIStatus:       "not_specified",
			},
		},
		{
			Name:                  "Sorbitol",
			Origin:                model.OriginPlantBased,
			Purpose:               []string{"Sweetener", "Humectant", "Texture enhancer"},
			Aliases:               []string{"glucitol", "E967"},
			ENumbers:              []string{"E420"},
			BaseSafetyScore:       7,
			BaseSafetyExplanation: "Sugar alcohol that provides sweetness with fewer calories than sugar. Generally safe but may cause digestive issues in large amounts.",
			AgeConsiderations: model.AgeConsiderations{
				Children: "Safe in moderate amounts but may cause digestive upset if consumed in large quantities.",
			},
			HealthConditionNotes: map[model.Condition]model.HealthNote{
				model.ConditionDigestive: {Text: "May cause digestive upset and diarrhea in sensitive individuals or when consumed in large amounts."},
			},
			Disclaimer: educationalDisclaimer,
			Regulatory: model.Regulatory{
				FunctionalClass: "Sweetener",
				WhyUsed:         "Provides sweetness with fewer calories and acts as humectant",
				CodexStatus:     "permitted",
				ADIStatus:       "not_specified",
			},
		},
	}
}
