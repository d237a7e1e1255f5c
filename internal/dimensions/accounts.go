// Package dimensions generates the account and user dimension tables the
// event simulation runs against. Both tables are generated once per run and
// consumed read-only afterwards.
package dimensions

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/tracklab/synthgen/internal/config"
	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
)

// accountCreationSpreadDays is how far back account creation dates are
// spread before the simulation start (~18 months).
const accountCreationSpreadDays = 540

var (
	planTiers     = []models.PlanTier{models.TierFree, models.TierBasic, models.TierPro, models.TierEnterprise}
	planTierProbs = []float64{0.35, 0.35, 0.25, 0.05}

	regions     = []string{"NA", "LATAM", "EU", "APAC"}
	regionProbs = []float64{0.45, 0.20, 0.25, 0.10}
)

// GenerateAccounts generates the account dimension. Larger tiers are rarer;
// creation dates are spread across the 540 days before the simulation start.
// A duplicate account_id is a fatal identifier collision.
func GenerateAccounts(cfg config.GenerationConfig, rng *rand.Rand) ([]models.Account, error) {
	start, err := cfg.Start()
	if err != nil {
		return nil, err
	}
	createdStart := start.AddDate(0, 0, -accountCreationSpreadDays)

	accounts := make([]models.Account, 0, cfg.Accounts)
	seen := make(map[string]struct{}, cfg.Accounts)

	for i := 0; i < cfg.Accounts; i++ {
		id := uuid.NewString()
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate account_id generated: %s", id)
		}
		seen[id] = struct{}{}

		createdAt := createdStart.AddDate(0, 0, randx.UniformInt(rng, 0, accountCreationSpreadDays))

		accounts = append(accounts, models.Account{
			AccountID:   id,
			AccountName: fmt.Sprintf("Account_%d", 10000+i),
			PlanTier:    planTiers[randx.WeightedIndex(rng, planTierProbs)],
			CreatedAt:   createdAt,
			Region:      regions[randx.WeightedIndex(rng, regionProbs)],
			IsActive:    randx.Bernoulli(rng, 0.93),
		})
	}

	return accounts, nil
}

// usersPerAccount draws the user count for an account. Higher tiers carry
// larger seats ranges.
func usersPerAccount(tier models.PlanTier, cfg config.GenerationConfig, rng *rand.Rand) int {
	switch tier {
	case models.TierEnterprise:
		return randx.UniformInt(rng, 50, cfg.MaxUsersPerAccount+1)
	case models.TierPro:
		return randx.UniformInt(rng, 15, 81)
	case models.TierBasic:
		return randx.UniformInt(rng, cfg.MinUsersPerAccount, 41)
	default:
		return randx.UniformInt(rng, cfg.MinUsersPerAccount, 21)
	}
}

// daysAfter returns t shifted forward by a uniform draw of [lo, hi) days.
func daysAfter(rng *rand.Rand, t time.Time, lo, hi int) time.Time {
	return t.AddDate(0, 0, randx.UniformInt(rng, lo, hi))
}
