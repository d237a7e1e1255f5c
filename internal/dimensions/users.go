package dimensions

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/tracklab/synthgen/internal/config"
	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
)

var (
	roles     = []string{"member", "manager", "admin"}
	roleProbs = []float64{0.80, 0.15, 0.05}

	timezones = []string{"UTC", "America/New_York", "America/Bogota", "Europe/London"}
	countries = []string{"US", "CA", "CR", "CO", "GB", "DE", "BR"}
)

// GenerateUsers generates the user dimension for the given accounts.
// 85% of users activate within a week of creation; 10% go inactive, and
// inactive activated users get a deactivation date 14-140 days after
// activation. A duplicate user_id is a fatal identifier collision.
func GenerateUsers(cfg config.GenerationConfig, accounts []models.Account, rng *rand.Rand) ([]models.User, error) {
	var users []models.User
	seen := make(map[string]struct{})

	for _, acc := range accounts {
		n := usersPerAccount(acc.PlanTier, cfg, rng)

		for i := 0; i < n; i++ {
			id := uuid.NewString()
			if _, dup := seen[id]; dup {
				return nil, fmt.Errorf("duplicate user_id generated: %s", id)
			}
			seen[id] = struct{}{}

			createdAt := daysAfter(rng, acc.CreatedAt, 0, 120)

			user := models.User{
				UserID:    id,
				AccountID: acc.AccountID,
				Role:      roles[randx.WeightedIndex(rng, roleProbs)],
				CreatedAt: createdAt,
				Timezone:  timezones[rng.Intn(len(timezones))],
				Country:   countries[rng.Intn(len(countries))],
			}

			if randx.Bernoulli(rng, 0.85) {
				t := daysAfter(rng, createdAt, 0, 7)
				user.ActivatedAt = &t
			}

			user.IsActive = randx.Bernoulli(rng, 0.90)
			if !user.IsActive && user.ActivatedAt != nil {
				t := daysAfter(rng, *user.ActivatedAt, 14, 140)
				user.DeactivatedAt = &t
			}

			users = append(users, user)
		}
	}

	return users, nil
}
