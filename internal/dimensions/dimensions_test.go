package dimensions

import (
	"strings"
	"testing"

	"github.com/tracklab/synthgen/internal/config"
	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
)

func testGenConfig(accounts int) config.GenerationConfig {
	cfg := config.Default().Generation
	cfg.Accounts = accounts
	return cfg
}

func TestGenerateAccounts(t *testing.T) {
	cfg := testGenConfig(2000)
	accounts, err := GenerateAccounts(cfg, randx.NewSeeded(1))
	if err != nil {
		t.Fatalf("GenerateAccounts failed: %v", err)
	}
	if len(accounts) != 2000 {
		t.Fatalf("got %d accounts, want 2000", len(accounts))
	}

	start, _ := cfg.Start()
	earliest := start.AddDate(0, 0, -accountCreationSpreadDays)

	tiers := make(map[models.PlanTier]int)
	active := 0
	seen := make(map[string]bool)

	for i, acc := range accounts {
		if seen[acc.AccountID] {
			t.Fatalf("duplicate account_id %s", acc.AccountID)
		}
		seen[acc.AccountID] = true

		if !strings.HasPrefix(acc.AccountName, "Account_1") {
			t.Errorf("account name %q has unexpected shape", acc.AccountName)
		}
		if acc.CreatedAt.Before(earliest) || !acc.CreatedAt.Before(start) {
			t.Errorf("account %d created %v outside [%v, %v)", i, acc.CreatedAt, earliest, start)
		}
		if acc.Region == "" {
			t.Errorf("account %d has empty region", i)
		}
		tiers[acc.PlanTier]++
		if acc.IsActive {
			active++
		}
	}

	for tier, want := range map[models.PlanTier]float64{
		models.TierFree:       0.35,
		models.TierBasic:      0.35,
		models.TierPro:        0.25,
		models.TierEnterprise: 0.05,
	} {
		got := float64(tiers[tier]) / 2000
		if got < want-0.03 || got > want+0.03 {
			t.Errorf("tier %s fraction = %.4f, want %.2f ±0.03", tier, got, want)
		}
	}

	if got := float64(active) / 2000; got < 0.90 || got > 0.96 {
		t.Errorf("active account fraction = %.4f, want ~0.93", got)
	}
}

func TestGenerateUsersBoundsPerTier(t *testing.T) {
	cfg := testGenConfig(300)
	rng := randx.NewSeeded(2)
	accounts, err := GenerateAccounts(cfg, rng)
	if err != nil {
		t.Fatalf("GenerateAccounts failed: %v", err)
	}
	users, err := GenerateUsers(cfg, accounts, rng)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}

	perAccount := make(map[string]int)
	for _, u := range users {
		perAccount[u.AccountID]++
	}

	for _, acc := range accounts {
		n := perAccount[acc.AccountID]
		var lo, hi int
		switch acc.PlanTier {
		case models.TierEnterprise:
			lo, hi = 50, cfg.MaxUsersPerAccount
		case models.TierPro:
			lo, hi = 15, 80
		case models.TierBasic:
			lo, hi = cfg.MinUsersPerAccount, 40
		default:
			lo, hi = cfg.MinUsersPerAccount, 20
		}
		if n < lo || n > hi {
			t.Errorf("%s account has %d users, want [%d, %d]", acc.PlanTier, n, lo, hi)
		}
	}
}

func TestGenerateUsersLifecycle(t *testing.T) {
	cfg := testGenConfig(300)
	rng := randx.NewSeeded(3)
	accounts, err := GenerateAccounts(cfg, rng)
	if err != nil {
		t.Fatalf("GenerateAccounts failed: %v", err)
	}
	users, err := GenerateUsers(cfg, accounts, rng)
	if err != nil {
		t.Fatalf("GenerateUsers failed: %v", err)
	}

	accountCreated := make(map[string]bool)
	for _, acc := range accounts {
		accountCreated[acc.AccountID] = true
	}

	activated := 0
	seen := make(map[string]bool)

	for _, u := range users {
		if seen[u.UserID] {
			t.Fatalf("duplicate user_id %s", u.UserID)
		}
		seen[u.UserID] = true

		if !accountCreated[u.AccountID] {
			t.Fatalf("user %s references unknown account %s", u.UserID, u.AccountID)
		}

		if u.ActivatedAt != nil {
			activated++
			if u.ActivatedAt.Before(u.CreatedAt) {
				t.Errorf("user %s activated before creation", u.UserID)
			}
			if u.ActivatedAt.Sub(u.CreatedAt).Hours() > 7*24 {
				t.Errorf("user %s activated more than a week after creation", u.UserID)
			}
		}

		switch {
		case u.DeactivatedAt != nil && u.IsActive:
			t.Errorf("active user %s has a deactivation date", u.UserID)
		case u.DeactivatedAt != nil && u.ActivatedAt == nil:
			t.Errorf("never-activated user %s has a deactivation date", u.UserID)
		case u.DeactivatedAt != nil:
			gap := u.DeactivatedAt.Sub(*u.ActivatedAt).Hours() / 24
			if gap < 14 || gap >= 140 {
				t.Errorf("user %s deactivated %f days after activation, want [14, 140)", u.UserID, gap)
			}
		case !u.IsActive && u.ActivatedAt != nil:
			t.Errorf("inactive activated user %s missing deactivation date", u.UserID)
		}
	}

	if got := float64(activated) / float64(len(users)); got < 0.82 || got > 0.88 {
		t.Errorf("activated fraction = %.4f, want ~0.85", got)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := testGenConfig(50)

	a, err := GenerateAccounts(cfg, randx.NewSeeded(9))
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateAccounts(cfg, randx.NewSeeded(9))
	if err != nil {
		t.Fatal(err)
	}

	// account_ids are random UUIDs; everything drawn from the seeded rng
	// must match.
	for i := range a {
		if a[i].PlanTier != b[i].PlanTier || a[i].Region != b[i].Region ||
			!a[i].CreatedAt.Equal(b[i].CreatedAt) || a[i].IsActive != b[i].IsActive {
			t.Fatalf("account %d diverged across identical seeds", i)
		}
	}
}
