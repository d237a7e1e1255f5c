package events

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/tracklab/synthgen/internal/config"
	"github.com/tracklab/synthgen/internal/logging"
	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
)

// Churn parameters: each user independently has a 12% chance of a churn
// cutoff, uniformly drawn from day 15 through the last simulated day.
const (
	churnProb        = 0.12
	churnEarliestDay = 15
)

// Generator drives the daily simulation over all activated users and
// calendar days, then pipes the accumulated table through the imperfection
// injector. All randomness flows through the single rng it was built with,
// so a fixed seed reproduces the run.
type Generator struct {
	rng *rand.Rand
	log *slog.Logger
}

// NewGenerator creates a generator. A nil logger disables logging.
func NewGenerator(rng *rand.Rand, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{rng: rng, log: log}
}

// Generate produces the full event table for the configured window.
// Users with a nil activated_at are excluded before simulation. The
// returned table has passed the imperfection injector and is guaranteed to
// carry globally unique event_ids; a collision aborts the run.
func (g *Generator) Generate(cfg *config.Config, accounts []models.Account, users []models.User) ([]models.Event, error) {
	start, err := cfg.Generation.Start()
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, cfg.Generation.Days)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}

	tierByAccount := make(map[string]models.PlanTier, len(accounts))
	for _, acc := range accounts {
		tierByAccount[acc.AccountID] = acc.PlanTier
	}

	// Personas are assigned up front for every user, stable for the run.
	assigner := NewPersonaAssigner(g.rng)
	for _, u := range users {
		assigner.Assign(u.UserID)
	}

	sim := NewDailySimulator(g.rng)

	var rows []models.Event
	simulated := 0

	for _, u := range users {
		if u.ActivatedAt == nil {
			continue
		}

		tier, ok := tierByAccount[u.AccountID]
		if !ok {
			return nil, fmt.Errorf("user %s references unknown account %s", u.UserID, u.AccountID)
		}

		persona := assigner.Assign(u.UserID)
		pActive := ActivityProbability(tier, persona)

		// Soft churn: affected users contribute nothing past their cutoff.
		var churnCutoff *time.Time
		if randx.Bernoulli(g.rng, churnProb) && cfg.Generation.Days > churnEarliestDay {
			t := start.AddDate(0, 0, randx.UniformInt(g.rng, churnEarliestDay, cfg.Generation.Days))
			churnCutoff = &t
		}

		for _, d := range days {
			if churnCutoff != nil && d.After(*churnCutoff) {
				break
			}
			rows = append(rows, sim.SimulateDay(u, d, persona, pActive)...)
		}

		simulated++
		g.log.Log(context.Background(), logging.LevelTrace, "user simulated",
			"user_id", u.UserID, "persona", string(persona), "p_active", pActive, "churned", churnCutoff != nil)
	}

	g.log.Debug("raw events generated", "users", simulated, "rows", len(rows))

	injector := NewInjector(cfg.Imperfections, g.rng)
	rows = injector.Apply(rows)

	if err := checkUniqueEventIDs(rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// checkUniqueEventIDs guards the global event_id uniqueness invariant.
// A collision means corrupt identifier generation and aborts the run.
func checkUniqueEventIDs(events []models.Event) error {
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, dup := seen[e.EventID]; dup {
			return fmt.Errorf("duplicate event_id generated: %s", e.EventID)
		}
		seen[e.EventID] = struct{}{}
	}
	return nil
}
