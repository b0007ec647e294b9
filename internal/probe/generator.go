package probe

import (
	"math/rand/v2"
	"strings"

	"github.com/okian/ingredex/internal/domain/types"
)

var (
	ageGroups   = []string{"child", "adult", "elderly"}
	conditions  = []string{"diabetes", "blood-pressure", "digestive"}
	frequencies = []string{"daily", "weekly", "occasional"}
)

// Generate builds rounds lookups per record. The first lookup for a record
// always uses its exact name with no context; later ones vary the spelling
// and attach a random context.
func Generate(records []types.Ingredient, rounds int, seed uint64) []Lookup {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Lookup, 0, len(records)*rounds)
	for _, rec := range records {
		for i := 0; i < rounds; i++ {
			l := Lookup{Query: rec.Name, Expected: rec.Name, Base: rec.SafetyScore, Exact: true}
			if i > 0 {
				l.Exact = false
				l.Query = spelling(rng, rec.Name)
				l.Params = randomContext(rng)
			}
			out = append(out, l)
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// spelling returns name in a random case with optional padding; all of
// these resolve to the same record.
func spelling(rng *rand.Rand, name string) string {
	switch rng.IntN(4) {
	case 0:
		return strings.ToUpper(name)
	case 1:
		return strings.ToLower(name)
	case 2:
		return "  " + name + " "
	default:
		return name
	}
}

func randomContext(rng *rand.Rand) map[string][]string {
	params := map[string][]string{}
	if rng.IntN(2) == 0 {
		params["ageGroup"] = []string{ageGroups[rng.IntN(len(ageGroups))]}
	}
	for _, c := range conditions {
		if rng.IntN(3) == 0 {
			params["healthConditions"] = append(params["healthConditions"], c)
		}
	}
	if rng.IntN(2) == 0 {
		params["consumptionFrequency"] = []string{frequencies[rng.IntN(len(frequencies))]}
	}
	return params
}
