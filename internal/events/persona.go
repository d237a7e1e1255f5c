// Package events holds the core of the generator: persona assignment, the
// per-user per-day activity simulation, the imperfection injection pass,
// and the orchestrator that drives them over the simulated window.
package events

import (
	"math"
	"math/rand"

	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
)

// maxActivityProbability caps the per-day activity probability regardless
// of tier and persona.
const maxActivityProbability = 0.85

var (
	personas     = []models.Persona{models.PersonaPower, models.PersonaRegular, models.PersonaLight}
	personaProbs = []float64{0.10, 0.60, 0.30}

	tierBaseProbability = map[models.PlanTier]float64{
		models.TierFree:       0.18,
		models.TierBasic:      0.25,
		models.TierPro:        0.33,
		models.TierEnterprise: 0.42,
	}

	personaMultiplier = map[models.Persona]float64{
		models.PersonaLight:   0.60,
		models.PersonaRegular: 1.00,
		models.PersonaPower:   1.35,
	}
)

// PersonaAssigner assigns each user a stable engagement persona. The first
// call for a user draws the persona; later calls return the memoized value.
type PersonaAssigner struct {
	rng    *rand.Rand
	byUser map[string]models.Persona
}

// NewPersonaAssigner creates an assigner drawing from rng.
func NewPersonaAssigner(rng *rand.Rand) *PersonaAssigner {
	return &PersonaAssigner{
		rng:    rng,
		byUser: make(map[string]models.Persona),
	}
}

// Assign returns the persona for a user, drawing it on first use.
// Distribution: power 10%, regular 60%, light 30%.
func (a *PersonaAssigner) Assign(userID string) models.Persona {
	if p, ok := a.byUser[userID]; ok {
		return p
	}
	p := personas[randx.WeightedIndex(a.rng, personaProbs)]
	a.byUser[userID] = p
	return p
}

// Personas returns the full user-to-persona mapping built so far. The map
// is the assigner's own; callers treat it as read-only.
func (a *PersonaAssigner) Personas() map[string]models.Persona {
	return a.byUser
}

// ActivityProbability derives the per-day activity probability from the
// account tier and user persona: min(0.85, base[tier] * multiplier[persona]).
func ActivityProbability(tier models.PlanTier, persona models.Persona) float64 {
	return math.Min(maxActivityProbability, tierBaseProbability[tier]*personaMultiplier[persona])
}
