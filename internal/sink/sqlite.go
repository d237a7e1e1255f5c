package sink

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tracklab/synthgen/internal/models"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteFile is the database file name inside the output directory.
const SQLiteFile = "synthgen.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS dim_account (
	account_id   TEXT PRIMARY KEY,
	account_name TEXT NOT NULL,
	plan_tier    TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	region       TEXT NOT NULL,
	is_active    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dim_user (
	user_id        TEXT PRIMARY KEY,
	account_id     TEXT NOT NULL REFERENCES dim_account(account_id),
	role           TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	activated_at   TEXT,
	timezone       TEXT NOT NULL,
	country        TEXT NOT NULL,
	is_active      INTEGER NOT NULL,
	deactivated_at TEXT
);

CREATE TABLE IF NOT EXISTS fct_event (
	event_id         TEXT PRIMARY KEY,
	event_ts         TEXT NOT NULL,
	ingested_at      TEXT NOT NULL,
	event_name       TEXT NOT NULL,
	event_category   TEXT NOT NULL,
	user_id          TEXT NOT NULL REFERENCES dim_user(user_id),
	account_id       TEXT NOT NULL REFERENCES dim_account(account_id),
	task_id          TEXT,
	duration_seconds INTEGER,
	is_productive    INTEGER,
	source           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fct_event_user ON fct_event(user_id);
CREATE INDEX IF NOT EXISTS idx_fct_event_ts ON fct_event(event_ts);
`

// WriteSQLite writes all three tables into dir/synthgen.db, replacing any
// previous contents. Inserts run in one transaction per table.
func WriteSQLite(ctx context.Context, dir string, accounts []models.Account, users []models.User, events []models.Event) (string, error) {
	path := filepath.Join(dir, SQLiteFile)

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return "", fmt.Errorf("initialize schema: %w", err)
	}
	for _, table := range []string{"fct_event", "dim_user", "dim_account"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return "", fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertAccounts(ctx, db, accounts); err != nil {
		return "", err
	}
	if err := insertUsers(ctx, db, users); err != nil {
		return "", err
	}
	if err := insertEvents(ctx, db, events); err != nil {
		return "", err
	}

	return path, nil
}

func insertAccounts(ctx context.Context, db *sql.DB, accounts []models.Account) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accounts tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dim_account (account_id, account_name, plan_tier, created_at, region, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare account insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range accounts {
		_, err := stmt.ExecContext(ctx,
			a.AccountID, a.AccountName, string(a.PlanTier),
			models.FormatTime(a.CreatedAt), a.Region, a.IsActive)
		if err != nil {
			return fmt.Errorf("insert account %s: %w", a.AccountID, err)
		}
	}

	return tx.Commit()
}

func insertUsers(ctx context.Context, db *sql.DB, users []models.User) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin users tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO dim_user (user_id, account_id, role, created_at, activated_at, timezone, country, is_active, deactivated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare user insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		_, err := stmt.ExecContext(ctx,
			u.UserID, u.AccountID, u.Role,
			models.FormatTime(u.CreatedAt), nullTime(u.ActivatedAt),
			u.Timezone, u.Country, u.IsActive, nullTime(u.DeactivatedAt))
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.UserID, err)
		}
	}

	return tx.Commit()
}

func insertEvents(ctx context.Context, db *sql.DB, events []models.Event) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin events tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fct_event (event_id, event_ts, ingested_at, event_name, event_category, user_id, account_id, task_id, duration_seconds, is_productive, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.EventID, models.FormatTime(e.EventTS), models.FormatTime(e.IngestedAt),
			e.EventName, string(e.EventCategory), e.UserID, e.AccountID,
			nullString(e.TaskID), nullInt(e.DurationSeconds), nullBool(e.IsProductive),
			string(e.Source))
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.EventID, err)
		}
	}

	return tx.Commit()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return models.FormatTime(*t)
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}
