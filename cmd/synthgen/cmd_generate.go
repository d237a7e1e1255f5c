package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tracklab/synthgen/internal/config"
	"github.com/tracklab/synthgen/internal/dimensions"
	"github.com/tracklab/synthgen/internal/events"
	"github.com/tracklab/synthgen/internal/logging"
	"github.com/tracklab/synthgen/internal/models"
	"github.com/tracklab/synthgen/internal/randx"
	"github.com/tracklab/synthgen/internal/report"
	"github.com/tracklab/synthgen/internal/sink"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the account, user, and event tables",
		Long: `Generate the full dataset and write it to the output directory.

Dimensions are generated fresh unless --accounts-csv and --users-csv point
at existing dimension files, in which case events are regenerated against
those tables.

Examples:
  synthgen generate
  synthgen generate --seed 7 --days 30 --out /tmp/data
  synthgen generate --accounts-csv data/raw/dim_account.csv --users-csv data/raw/dim_user.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			applyGenerateFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			rng := randx.NewSeeded(cfg.Generation.Seed)
			log.Debug("configuration resolved",
				"seed", cfg.Generation.Seed,
				"start_date", cfg.Generation.StartDate,
				"days", cfg.Generation.Days,
				"accounts", cfg.Generation.Accounts,
				"out_dir", cfg.Output.Dir,
				"format", cfg.Output.Format)

			accountsCSV, _ := cmd.Flags().GetString("accounts-csv")
			usersCSV, _ := cmd.Flags().GetString("users-csv")
			if (accountsCSV == "") != (usersCSV == "") {
				return fmt.Errorf("--accounts-csv and --users-csv must be given together")
			}

			var accounts []models.Account
			var users []models.User
			if accountsCSV != "" {
				accounts, err = sink.LoadAccountsCSV(accountsCSV)
				if err != nil {
					return fmt.Errorf("load accounts: %w", err)
				}
				users, err = sink.LoadUsersCSV(usersCSV)
				if err != nil {
					return fmt.Errorf("load users: %w", err)
				}
				log.Info("dimensions loaded", "accounts", len(accounts), "users", len(users))
			} else {
				accounts, err = dimensions.GenerateAccounts(cfg.Generation, rng)
				if err != nil {
					return fmt.Errorf("generate accounts: %w", err)
				}
				users, err = dimensions.GenerateUsers(cfg.Generation, accounts, rng)
				if err != nil {
					return fmt.Errorf("generate users: %w", err)
				}
				log.Info("dimensions generated", "accounts", len(accounts), "users", len(users))
			}

			generator := events.NewGenerator(rng, log)
			evts, err := generator.Generate(cfg, accounts, users)
			if err != nil {
				return fmt.Errorf("generate events: %w", err)
			}
			log.Info("events generated", "rows", len(evts))

			dir, err := sink.EnsureDir(cfg.Output.Dir)
			if err != nil {
				return err
			}

			var paths []string
			if cfg.Output.Format == config.FormatCSV || cfg.Output.Format == config.FormatBoth {
				for _, write := range []func() (string, error){
					func() (string, error) { return sink.WriteAccountsCSV(dir, accounts) },
					func() (string, error) { return sink.WriteUsersCSV(dir, users) },
					func() (string, error) { return sink.WriteEventsCSV(dir, evts) },
				} {
					p, err := write()
					if err != nil {
						return err
					}
					paths = append(paths, p)
				}
			}
			if cfg.Output.Format == config.FormatSQLite || cfg.Output.Format == config.FormatBoth {
				p, err := sink.WriteSQLite(cmd.Context(), dir, accounts, users, evts)
				if err != nil {
					return err
				}
				paths = append(paths, p)
			}

			summary := report.Summarize(accounts, users, evts)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"status":  "generated",
					"paths":   paths,
					"summary": summary,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Generated files:")
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "Quick checks:")
			fmt.Fprint(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}

	cmd.Flags().Int64("seed", 0, "RNG seed (0 = time-based)")
	cmd.Flags().String("start-date", "", "First simulated calendar day (YYYY-MM-DD)")
	cmd.Flags().Int("days", 0, "Simulation window length in days")
	cmd.Flags().Int("accounts", 0, "Number of accounts to generate")
	cmd.Flags().Int("min-users", 0, "Minimum users per account")
	cmd.Flags().Int("max-users", 0, "Maximum users per account")
	cmd.Flags().String("out", "", "Output directory")
	cmd.Flags().String("format", "", "Output format: csv, sqlite, or both")
	cmd.Flags().Float64("pct-missing-duration", 0, "Fraction of duration rows nulled out")
	cmd.Flags().Float64("pct-missing-task-id", 0, "Fraction of task_completed rows losing task_id")
	cmd.Flags().Float64("pct-outlier-duration", 0, "Fraction of timer_stop rows with outlier durations")
	cmd.Flags().Float64("pct-late-events", 0, "Fraction of rows with 1-72h ingestion delay")
	cmd.Flags().String("accounts-csv", "", "Existing account dimension to regenerate events against")
	cmd.Flags().String("users-csv", "", "Existing user dimension to regenerate events against")

	return cmd
}

// applyGenerateFlags overlays explicitly set command-line flags onto the
// loaded configuration. Unset flags leave the config value alone.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("seed") {
		cfg.Generation.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("start-date") {
		cfg.Generation.StartDate, _ = cmd.Flags().GetString("start-date")
	}
	if cmd.Flags().Changed("days") {
		cfg.Generation.Days, _ = cmd.Flags().GetInt("days")
	}
	if cmd.Flags().Changed("accounts") {
		cfg.Generation.Accounts, _ = cmd.Flags().GetInt("accounts")
	}
	if cmd.Flags().Changed("min-users") {
		cfg.Generation.MinUsersPerAccount, _ = cmd.Flags().GetInt("min-users")
	}
	if cmd.Flags().Changed("max-users") {
		cfg.Generation.MaxUsersPerAccount, _ = cmd.Flags().GetInt("max-users")
	}
	if cmd.Flags().Changed("out") {
		cfg.Output.Dir, _ = cmd.Flags().GetString("out")
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("pct-missing-duration") {
		cfg.Imperfections.PctMissingDuration, _ = cmd.Flags().GetFloat64("pct-missing-duration")
	}
	if cmd.Flags().Changed("pct-missing-task-id") {
		cfg.Imperfections.PctMissingTaskID, _ = cmd.Flags().GetFloat64("pct-missing-task-id")
	}
	if cmd.Flags().Changed("pct-outlier-duration") {
		cfg.Imperfections.PctOutlierDuration, _ = cmd.Flags().GetFloat64("pct-outlier-duration")
	}
	if cmd.Flags().Changed("pct-late-events") {
		cfg.Imperfections.PctLateEvents, _ = cmd.Flags().GetFloat64("pct-late-events")
	}
}
